package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseID parses a positive decimal id from a path segment.
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidLessonID
	}
	return uint(id), nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
