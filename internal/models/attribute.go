// Package models defines the loreweave data model: world objects,
// their typed attributes, and the events that change them over time.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType identifies the closed set of attribute value types.
type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeEnum    ValueType = "enum"
	ValueTypeList    ValueType = "list"
	ValueTypeDate    ValueType = "date"
)

// KnownValueTypes lists every valid ValueType.
var KnownValueTypes = []ValueType{
	ValueTypeText,
	ValueTypeNumber,
	ValueTypeBoolean,
	ValueTypeEnum,
	ValueTypeList,
	ValueTypeDate,
}

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	for _, known := range KnownValueTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Value is a tagged union over the attribute value types. Exactly one
// of the payload fields is meaningful, selected by Type; construct
// values through the typed constructors so the tag and payload cannot
// disagree.
type Value struct {
	Type ValueType `json:"type" yaml:"type"`

	// Text holds the payload for text and enum values.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Number holds the payload for number values and the story-time
	// scalar for date values.
	Number float64 `json:"number,omitempty" yaml:"number,omitempty"`

	// Bool holds the payload for boolean values.
	Bool bool `json:"bool,omitempty" yaml:"bool,omitempty"`

	// List holds the payload for list values.
	List []string `json:"list,omitempty" yaml:"list,omitempty"`
}

// TextValue returns a text value.
func TextValue(text string) Value {
	return Value{Type: ValueTypeText, Text: text}
}

// NumberValue returns a number value.
func NumberValue(n float64) Value {
	return Value{Type: ValueTypeNumber, Number: n}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, Bool: b}
}

// EnumValue returns an enum value. Membership in the owning
// attribute's EnumValues is checked by Attribute.Validate.
func EnumValue(choice string) Value {
	return Value{Type: ValueTypeEnum, Text: choice}
}

// ListValue returns a list value.
func ListValue(items ...string) Value {
	return Value{Type: ValueTypeList, List: items}
}

// DateValue returns a story-time date value.
func DateValue(t float64) Value {
	return Value{Type: ValueTypeDate, Number: t}
}

// ParseValue parses raw into a value of the given type. Used by the
// CLI and the TUI edit form, where everything arrives as a string.
func ParseValue(valueType ValueType, raw string) (Value, error) {
	switch valueType {
	case ValueTypeText:
		return TextValue(raw), nil
	case ValueTypeEnum:
		return EnumValue(strings.TrimSpace(raw)), nil
	case ValueTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q", raw)
		}
		return NumberValue(n), nil
	case ValueTypeDate:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid date %q", raw)
		}
		return DateValue(n), nil
	case ValueTypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("invalid boolean %q", raw)
		}
		return BoolValue(b), nil
	case ValueTypeList:
		if strings.TrimSpace(raw) == "" {
			return ListValue(), nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return ListValue(parts...), nil
	default:
		return Value{}, fmt.Errorf("unknown value type %q", valueType)
	}
}

// Validate checks that the tag is known and the payload matches it.
func (v Value) Validate() error {
	errs := &ValidationErrors{}
	if !v.Type.Valid() {
		errs.AddMessage("type", fmt.Sprintf("unknown value type %q", v.Type))
		return errs.Err()
	}
	switch v.Type {
	case ValueTypeText, ValueTypeEnum:
		if len(v.List) > 0 {
			errs.AddMessage("list", "list payload set on non-list value")
		}
	case ValueTypeNumber, ValueTypeDate, ValueTypeBoolean:
		if v.Text != "" {
			errs.AddMessage("text", "text payload set on non-text value")
		}
		if len(v.List) > 0 {
			errs.AddMessage("list", "list payload set on non-list value")
		}
	case ValueTypeList:
		if v.Text != "" {
			errs.AddMessage("text", "text payload set on list value")
		}
	}
	return errs.Err()
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueTypeText, ValueTypeEnum:
		return v.Text == other.Text
	case ValueTypeNumber, ValueTypeDate:
		return v.Number == other.Number
	case ValueTypeBoolean:
		return v.Bool == other.Bool
	case ValueTypeList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != other.List[i] {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the payload for display.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeText, ValueTypeEnum:
		return v.Text
	case ValueTypeNumber, ValueTypeDate:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeList:
		return strings.Join(v.List, ", ")
	}
	return ""
}

// Attribute is a named, typed slot on a world object. Value is the
// base value, in effect before any change event.
type Attribute struct {
	// ID is the unique identifier for the attribute.
	ID string `json:"id" yaml:"id"`

	// Name is the human-friendly attribute name.
	Name string `json:"name" yaml:"name"`

	// Type constrains the attribute's value.
	Type ValueType `json:"type" yaml:"type"`

	// Value is the declared base value (time = -inf).
	Value Value `json:"value" yaml:"value"`

	// EnumValues lists the allowed choices when Type is enum.
	EnumValues []string `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
}

// Validate checks the attribute definition and its base value.
func (a Attribute) Validate() error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(a.ID) == "" {
		errs.AddMessage("id", "attribute id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		errs.AddMessage("name", "attribute name is required")
	}
	if !a.Type.Valid() {
		errs.AddMessage("type", fmt.Sprintf("unknown attribute type %q", a.Type))
	}
	if a.Type == ValueTypeEnum && len(a.EnumValues) == 0 {
		errs.AddMessage("enum_values", "enum attribute needs at least one allowed value")
	}
	if a.Type != ValueTypeEnum && len(a.EnumValues) > 0 {
		errs.AddMessage("enum_values", "enum_values only apply to enum attributes")
	}
	errs.Add("value", a.CheckValue(a.Value))
	return errs.Err()
}

// CheckValue verifies that v is assignable to this attribute: the
// types match and, for enums, the choice is one of EnumValues.
func (a Attribute) CheckValue(v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.Type != a.Type {
		return fmt.Errorf("value type %q does not match attribute type %q", v.Type, a.Type)
	}
	if a.Type == ValueTypeEnum {
		for _, allowed := range a.EnumValues {
			if v.Text == allowed {
				return nil
			}
		}
		return fmt.Errorf("%q is not an allowed choice (valid: %s)", v.Text, strings.Join(a.EnumValues, ", "))
	}
	return nil
}
