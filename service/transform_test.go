package service

import (
	"testing"
	"time"

	"marketbot/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLockinDuration(t *testing.T) {
	max := 14 * 24 * time.Hour

	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "minutes", input: "30m", expected: 30 * time.Minute},
		{name: "hours", input: "6h", expected: 6 * time.Hour},
		{name: "days", input: "2d", expected: 48 * time.Hour},
		{name: "uppercase unit", input: "6H", expected: 6 * time.Hour},
		{name: "surrounding whitespace", input: " 1h ", expected: time.Hour},
		{name: "clamped to maximum", input: "90d", expected: max},
		{name: "zero", input: "0m", wantErr: true},
		{name: "missing unit", input: "30", wantErr: true},
		{name: "unknown unit", input: "30s", wantErr: true},
		{name: "negative", input: "-5m", wantErr: true},
		{name: "fractional", input: "1.5h", wantErr: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
		{name: "too long", input: "99999999999m", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLockinDuration(tt.input, max)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		wantErr  bool
	}{
		{name: "two options", input: "yes|no", expected: []string{"yes", "no"}},
		{name: "trims whitespace", input: " yes | no ", expected: []string{"yes", "no"}},
		{name: "drops empty segments", input: "yes||no|", expected: []string{"yes", "no"}},
		{name: "multi-word values", input: "home win|away win|draw", expected: []string{"home win", "away win", "draw"}},
		{name: "single option", input: "yes", wantErr: true},
		{name: "only separators", input: "|||", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "backtick rejected", input: "yes|`no`", wantErr: true},
		{name: "too many options", input: "1|2|3|4|5|6|7|8|9|10|11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptions(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
