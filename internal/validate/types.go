// SPDX-License-Identifier: MIT
package validate

import "strings"

// LogLevels lists the accepted log levels, most verbose first.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ParseLogLevel lower-cases s and checks it against LogLevels.
// The returned error is a ValidationError for the "log-level" field.
func ParseLogLevel(s string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(s))
	v := New()
	v.OneOf("log-level", level, LogLevels)
	if err := v.Err(); err != nil {
		return "", err
	}
	return level, nil
}
