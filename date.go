package repo2pdf

import (
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/dateutil"
)

// ResolveDate handles "auto" and "auto:FORMAT" syntax for date values.
//   - "auto" → current date in YYYY-MM-DD format
//   - "auto:FORMAT" → current date in custom format (e.g., "auto:DD/MM/YYYY")
//   - "auto:preset" → current date using named preset (iso, european, us, long)
//   - any other value → returned unchanged (passthrough)
//
// The time parameter allows injecting a fixed time for testing.
func ResolveDate(value string, t time.Time) (string, error) {
	return dateutil.ResolveDate(value, t)
}

// expandVariables substitutes {{repo_name}} and {{date}}.
func expandVariables(s, repoName, date string) string {
	r := strings.NewReplacer("{{repo_name}}", repoName, "{{date}}", date)
	return r.Replace(s)
}
