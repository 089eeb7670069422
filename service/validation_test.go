package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"zencms/core/apperr"
	"zencms/model"
)

func TestValidatorUsesJSONNames(t *testing.T) {
	err := NewValidator().Validate(model.AddMusicRequest{Name: "x"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "audioUrl is required")
	assert.Contains(t, err.Error(), "categoryId is required")
	assert.Contains(t, err.Error(), "title is required")
}

func TestValidatorBatchIDs(t *testing.T) {
	v := NewValidator()

	err := v.Validate(model.BatchUpdateOrderRequest{})
	assert.Contains(t, err.Error(), "ids is required")

	err = v.Validate(model.BatchUpdateOrderRequest{IDs: []string{"a", "a"}})
	assert.Contains(t, err.Error(), "ids must not contain duplicates")

	assert.NoError(t, v.Validate(model.BatchUpdateOrderRequest{IDs: []string{"a", "b"}}))
}

func TestValidatorClock(t *testing.T) {
	v := NewValidator()

	err := v.Validate(model.AddTitleRequest{StartTime: "7:00", EndTime: "09:00", Title: "早安"})
	assert.Contains(t, err.Error(), "startTime must be a time in HH:mm format")

	assert.NoError(t, v.Validate(model.AddTitleRequest{StartTime: "07:00", EndTime: "09:00", Title: "早安"}))
	assert.NoError(t, v.Validate(model.CurrentTitleRequest{}))
}
