package utils

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// GenerateOrderID creates the human-facing booking reference.
// Format: BOOK-YYYYMMDD-HHMMSS-NNNN
func GenerateOrderID() string {
	now := time.Now()
	return fmt.Sprintf("BOOK-%s-%s-%04d", now.Format("20060102"), now.Format("150405"), rand.IntN(10000))
}
