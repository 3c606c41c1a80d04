package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected string
	}{
		{input: "2024-07-15", expected: "2024-07-15"},
		{input: " 2024-07-15 ", expected: "2024-07-15"},
		{input: "tomorrow", expected: "2024-05-16"},
		{input: "yesterday", expected: "2024-05-14"},
		{input: "15 de julio de 2024", expected: "2024-07-15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			day, err := events.ParseDay(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, day)
		})
	}
}

func TestParseDay_Errors(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	_, err := events.ParseDay("   ", now)
	require.ErrorIs(t, err, events.ErrEmptyDay)

	_, err = events.ParseDay("qwerty zxcv", now)
	require.Error(t, err)
}
