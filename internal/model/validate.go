package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxNameLength bounds a configuration name.
	MaxNameLength = 255

	// MaxDataBytes bounds the JSON payload of a configuration (1 MiB).
	MaxDataBytes = 1 << 20
)

// nameRe restricts names to letters, digits, spaces, hyphens, underscores,
// and periods.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// ValidateName checks a configuration name after trimming.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("configuration name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("configuration name cannot exceed %d characters", MaxNameLength)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("configuration name can only contain letters, numbers, spaces, hyphens, underscores, and periods")
	}
	return nil
}

// ValidateData checks that data is well-formed JSON within the size limit.
func ValidateData(data json.RawMessage) error {
	if len(data) == 0 {
		return fmt.Errorf("configuration data is required")
	}
	if len(data) > MaxDataBytes {
		return fmt.Errorf("configuration data cannot exceed %d bytes", MaxDataBytes)
	}
	if !json.Valid(data) {
		return fmt.Errorf("configuration data must be valid JSON")
	}
	return nil
}
