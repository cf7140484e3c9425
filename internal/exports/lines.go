package exports

import (
	"fmt"
	"sort"
)

// PlugUpJob is the job header printed on an exported plug-up sheet.
// Empty dates are treated as absent.
type PlugUpJob struct {
	Reference string
	Name      string
	StartDate string
	EndDate   string
}

// PlugUpRow is one printable sheet row.
type PlugUpRow struct {
	OrderIndex int
	Label      string
	Value      string
}

// PlugUpLines renders the plain text lines of a plug-up export. Rows are
// re-sorted by order index; the caller's slice is left untouched.
func PlugUpLines(job PlugUpJob, rows []PlugUpRow) []string {
	lines := make([]string, 0, len(rows)+4)
	lines = append(lines, "Plug-Up Sheet")
	lines = append(lines, fmt.Sprintf("Job: %s - %s", job.Reference, job.Name))
	if job.StartDate != "" && job.EndDate != "" {
		lines = append(lines, fmt.Sprintf("Dates: %s -> %s", job.StartDate, job.EndDate))
	}
	lines = append(lines, "")

	sorted := make([]PlugUpRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})

	for _, r := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", r.OrderIndex, r.Label, r.Value))
	}

	return lines
}
