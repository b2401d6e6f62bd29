package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("No data parsed. Check CSV format.", ErrNoData)

	assert.Equal(t, "No data parsed. Check CSV format.: no data parsed", err.Error())
	assert.ErrorIs(t, err, ErrNoData)

	wrapped := fmt.Errorf("rental: %w", err)
	assert.Equal(t, "No data parsed. Check CSV format.", UserMessage(wrapped))
}

func TestUserMessage_Plain(t *testing.T) {
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}
