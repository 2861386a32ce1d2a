package models

import (
	"fmt"
	"strings"
)

// ChangeEvent is a single discrete write of one attribute on one
// object, effective at Timestamp. Timestamps are abstract story-time
// scalars, not wall-clock time. Events are immutable once created
// except for drag-driven timestamp rewrites, which preserve the ID so
// the same-timestamp tie-break stays stable.
type ChangeEvent struct {
	// ID is the unique identifier for the event. Same-timestamp
	// events on one attribute are ordered by ID, lexicographically
	// greatest winning.
	ID string `json:"id" yaml:"id"`

	// Timestamp is the story time at which the write takes effect.
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`

	// ObjectID identifies the object being written.
	ObjectID string `json:"object_id" yaml:"object_id"`

	// AttributeID identifies the attribute being written.
	AttributeID string `json:"attribute_id" yaml:"attribute_id"`

	// NewValue is the value in effect from Timestamp onward.
	NewValue Value `json:"new_value" yaml:"new_value"`

	// OldValue optionally records the value the author observed
	// before the write. Informational only; resolution never reads it.
	OldValue *Value `json:"old_value,omitempty" yaml:"old_value,omitempty"`
}

// Validate checks required fields and the value payloads.
func (e *ChangeEvent) Validate() error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(e.ObjectID) == "" {
		errs.AddMessage("object_id", "object id is required")
	}
	if strings.TrimSpace(e.AttributeID) == "" {
		errs.AddMessage("attribute_id", "attribute id is required")
	}
	errs.Add("new_value", e.NewValue.Validate())
	if e.OldValue != nil {
		errs.Add("old_value", e.OldValue.Validate())
	}
	return errs.Err()
}

// TimelineEvent is a narrative interval shown on the timeline,
// distinct from attribute-change events. A nil End means an
// instantaneous event (zero-width interval).
type TimelineEvent struct {
	// ID is the unique identifier for the event.
	ID string `json:"id" yaml:"id"`

	// Title is the display label.
	Title string `json:"title" yaml:"title"`

	// Start is the story time the interval begins.
	Start float64 `json:"start" yaml:"start"`

	// End is the story time the interval ends; nil for instantaneous
	// events. When present, End >= Start.
	End *float64 `json:"end,omitempty" yaml:"end,omitempty"`

	// Category groups events for display (e.g. "war", "journey").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Participants lists the IDs of objects involved in the event.
	Participants []string `json:"participants,omitempty" yaml:"participants,omitempty"`
}

// EndOrStart returns End when present, Start otherwise. Zero-width
// intervals therefore report End == Start.
func (e *TimelineEvent) EndOrStart() float64 {
	if e.End != nil {
		return *e.End
	}
	return e.Start
}

// Duration returns the interval length; zero for instantaneous events.
func (e *TimelineEvent) Duration() float64 {
	return e.EndOrStart() - e.Start
}

// Validate rejects inverted intervals at the boundary so they can
// never reach track assignment.
func (e *TimelineEvent) Validate() error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(e.Title) == "" {
		errs.AddMessage("title", "title is required")
	}
	if e.End != nil && *e.End < e.Start {
		errs.AddMessage("end", fmt.Sprintf("end %g is before start %g", *e.End, e.Start))
	}
	for i, participant := range e.Participants {
		if strings.TrimSpace(participant) == "" {
			errs.AddMessage(fmt.Sprintf("participants[%d]", i), "participant id is empty")
		}
	}
	return errs.Err()
}
