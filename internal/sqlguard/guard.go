// Package sqlguard rejects SQL that is not a read-only SELECT/WITH statement.
// It is a pattern gate, not a parser: the executing engine must still be
// treated as the real safety boundary.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError carries the reason a statement was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// denyPatterns is a fixed, versioned list. Changing it is a security-relevant
// change and must be reviewed as such.
var denyPatterns = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{"DROP statement", regexp.MustCompile(`(?i)\bdrop\b`)},
	{"DELETE statement", regexp.MustCompile(`(?i)\bdelete\b`)},
	{"TRUNCATE statement", regexp.MustCompile(`(?i)\btruncate\b`)},
	{"INSERT statement", regexp.MustCompile(`(?i)\binsert\b`)},
	{"UPDATE statement", regexp.MustCompile(`(?i)\bupdate\b`)},
	{"ALTER statement", regexp.MustCompile(`(?i)\balter\b`)},
	{"CREATE statement", regexp.MustCompile(`(?i)\bcreate\b`)},
	{"GRANT statement", regexp.MustCompile(`(?i)\bgrant\b`)},
	{"REVOKE statement", regexp.MustCompile(`(?i)\brevoke\b`)},
	{"comment injection", regexp.MustCompile(`;\s*--`)},
	{"UNION-based injection", regexp.MustCompile(`(?i)\bunion\s+select\b`)},
}

// Validate reports whether sqlText is an acceptable read-only query. The
// denylist is checked first so that a rejected statement names the offending
// construct rather than the missing SELECT prefix.
func Validate(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return &ValidationError{Reason: "query is empty"}
	}

	for _, deny := range denyPatterns {
		if deny.pattern.MatchString(trimmed) {
			return &ValidationError{Reason: fmt.Sprintf("query contains a disallowed %s", deny.label)}
		}
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return &ValidationError{Reason: "only SELECT and WITH queries are allowed"}
	}
	return nil
}
