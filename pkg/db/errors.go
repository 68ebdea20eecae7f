package db

import "strings"

// IsUniqueViolation reports whether err references a unique violation. Names
// narrow the check to specific constraints: Postgres surfaces the constraint
// name, while the sqlite driver used in tests reports the violated column as
// "UNIQUE constraint failed: table.column", so callers pass both forms. With
// no names, any unique violation matches.
func IsUniqueViolation(err error, names ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if len(names) > 0 {
		for _, name := range names {
			if strings.Contains(msg, name) {
				return true
			}
		}
		return false
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
