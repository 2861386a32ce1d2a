package models

import (
	"fmt"
	"strings"
)

// ObjectKind categorizes world objects.
type ObjectKind string

const (
	ObjectKindPerson  ObjectKind = "person"
	ObjectKindPlace   ObjectKind = "place"
	ObjectKindProject ObjectKind = "project"
	ObjectKindCustom  ObjectKind = "custom"
)

// KnownObjectKinds lists every valid ObjectKind.
var KnownObjectKinds = []ObjectKind{
	ObjectKindPerson,
	ObjectKindPlace,
	ObjectKindProject,
	ObjectKindCustom,
}

// Valid reports whether k is a known object kind.
func (k ObjectKind) Valid() bool {
	for _, known := range KnownObjectKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Object is a world entity (person, place, project) carrying a set of
// typed attributes. The attribute values stored here are base values;
// the value at a point in story time is derived by the resolver from
// the change-event log.
type Object struct {
	// ID is the unique identifier for the object.
	ID string `json:"id" yaml:"id"`

	// Name is the human-friendly object name.
	Name string `json:"name" yaml:"name"`

	// Kind categorizes the object.
	Kind ObjectKind `json:"kind" yaml:"kind"`

	// Attributes are the object's typed attribute slots with their
	// base values. Attribute IDs are unique within the object.
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the attribute with the given id, if present.
func (o *Object) Attribute(id string) (Attribute, bool) {
	for _, attr := range o.Attributes {
		if attr.ID == id {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Validate checks the object and all of its attributes.
func (o *Object) Validate() error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(o.ID) == "" {
		errs.AddMessage("id", "object id is required")
	}
	if strings.TrimSpace(o.Name) == "" {
		errs.AddMessage("name", "object name is required")
	}
	if !o.Kind.Valid() {
		errs.AddMessage("kind", fmt.Sprintf("unknown object kind %q", o.Kind))
	}
	seen := make(map[string]struct{}, len(o.Attributes))
	for i, attr := range o.Attributes {
		field := fmt.Sprintf("attributes[%d]", i)
		if _, dup := seen[attr.ID]; dup {
			errs.AddMessage(field, fmt.Sprintf("duplicate attribute id %q", attr.ID))
		}
		seen[attr.ID] = struct{}{}
		errs.Add(field, attr.Validate())
	}
	return errs.Err()
}
