package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorsNestedFields(t *testing.T) {
	nested := &ValidationErrors{}
	nested.AddMessage("type", "unknown value type")

	validation := &ValidationErrors{}
	validation.Add("new_value", nested)

	err := validation.Err()
	require.Error(t, err)

	list, ok := err.(*ValidationErrors)
	require.True(t, ok)
	require.Len(t, list.Errors, 1)
	require.Equal(t, "new_value.type", list.Errors[0].Field)
}

func TestValidationErrorsIsMatchesCause(t *testing.T) {
	sentinel := errors.New("bad interval")

	validation := &ValidationErrors{}
	validation.Add("end", sentinel)

	err := validation.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, sentinel)
}

func TestValidationErrorsEmptyIsNil(t *testing.T) {
	validation := &ValidationErrors{}
	require.NoError(t, validation.Err())
}
