package output

import "sort"

// warningSeverity ranks severities for display; lower sorts first.
var warningSeverity = map[string]int{
	"error":   1,
	"warning": 2,
	"info":    3,
}

// SeverityRank returns the display rank of a severity. Unknown severities
// rank last.
func SeverityRank(severity string) int {
	if rank, ok := warningSeverity[severity]; ok {
		return rank
	}
	return warningSeverity["info"] + 1
}

// SortWarnings orders warnings by severity, then text.
func SortWarnings(warnings []Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := SeverityRank(warnings[i].Severity), SeverityRank(warnings[j].Severity)
		if a != b {
			return a < b
		}
		return warnings[i].Text < warnings[j].Text
	})
}
