package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketbot/apperrors"
)

// maxDurationInputLen guards against absurd numeric input before parsing
const maxDurationInputLen = 10

var durationPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

var durationUnits = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseLockinDuration parses user input like "30m", "6h" or "2d" into a
// lock-in duration, clamped to the configured maximum
func ParseLockinDuration(input string, max time.Duration) (time.Duration, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) > maxDurationInputLen {
		return 0, apperrors.InvalidInputf("duration %q is too long", input)
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return 0, apperrors.InvalidInputf("duration %q must be a number followed by m, h or d", input)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInputf("duration %q is out of range", input)
	}

	duration := time.Duration(value) * durationUnits[matches[2]]
	if duration <= 0 {
		return 0, apperrors.InvalidInputf("duration must be positive")
	}
	if duration > max {
		duration = max
	}

	return duration, nil
}

// ParseOptions splits a pipe-separated option list into trimmed option
// values. Empty segments are dropped; backticks are rejected because
// option values are rendered inside code spans.
func ParseOptions(input string) ([]string, error) {
	var options []string
	for _, segment := range strings.Split(input, "|") {
		value := strings.TrimSpace(segment)
		if value == "" {
			continue
		}
		if strings.Contains(value, "`") {
			return nil, apperrors.InvalidInputf("option %q must not contain backticks", value)
		}
		options = append(options, value)
	}

	if len(options) < 2 || len(options) > MaxPollOptions {
		return nil, apperrors.InvalidInputf("a poll needs between 2 and %d options, got %d", MaxPollOptions, len(options))
	}

	return options, nil
}
