// Package timeline holds the algorithmic core of loreweave: temporal
// attribute-state resolution, track layout for overlapping intervals,
// the time/pixel viewport mapping, and the drag-to-retime controller.
// Everything except the viewport and drag controller is a pure
// function, recomputed per call; identical input yields identical
// output.
package timeline

import (
	"github.com/loreweave/loreweave/internal/models"
)

// ResolveAt computes the state of every attribute of obj at story
// time t. The result maps attribute ID to the value in effect: the
// attribute's base value (time = -inf) unless some change event with
// Timestamp <= t overrides it, in which case the event with the
// greatest timestamp wins. Two events on the same attribute at the
// same timestamp are ordered by event ID, the lexicographically
// greatest ID winning (last-inserted-wins). Events after t are never
// consulted.
//
// A nil obj (unknown object) yields a nil map, distinct from an
// object whose attributes are simply unset. Events that reference an
// attribute the object does not declare are ignored.
func ResolveAt(obj *models.Object, events []models.ChangeEvent, t float64) map[string]models.Value {
	if obj == nil {
		return nil
	}

	resolved := make(map[string]models.Value, len(obj.Attributes))
	for _, attr := range obj.Attributes {
		resolved[attr.ID] = attr.Value
	}

	// winner per attribute: greatest (timestamp, id) with timestamp <= t.
	winners := make(map[string]models.ChangeEvent, len(obj.Attributes))
	for _, ev := range events {
		if ev.ObjectID != obj.ID || ev.Timestamp > t {
			continue
		}
		if _, declared := resolved[ev.AttributeID]; !declared {
			continue
		}
		current, ok := winners[ev.AttributeID]
		if !ok || laterWrite(ev, current) {
			winners[ev.AttributeID] = ev
		}
	}

	for attrID, ev := range winners {
		resolved[attrID] = ev.NewValue
	}
	return resolved
}

// laterWrite reports whether a takes effect after b under the
// (timestamp, id) total order.
func laterWrite(a, b models.ChangeEvent) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID > b.ID
}

// ResolveAttributeAt resolves a single attribute of obj at story time
// t. The second return is false when obj is nil or the attribute is
// not declared on it.
func ResolveAttributeAt(obj *models.Object, events []models.ChangeEvent, attributeID string, t float64) (models.Value, bool) {
	if obj == nil {
		return models.Value{}, false
	}
	if _, ok := obj.Attribute(attributeID); !ok {
		return models.Value{}, false
	}
	resolved := ResolveAt(obj, events, t)
	value, ok := resolved[attributeID]
	return value, ok
}
