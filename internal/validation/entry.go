// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"time"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate checks that a date string is a real calendar day in YYYY-MM-DD
// form. This is a transport-layer concern: the entry store itself treats the
// date as an opaque string, and any past or future day is allowed.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date is required")
	}
	if !datePattern.MatchString(date) {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date is not a valid calendar day")
	}
	return nil
}
