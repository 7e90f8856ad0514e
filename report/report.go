// Package report holds the per-run outcome counters returned by every
// conversion and sync workflow.
package report

import "fmt"

// Summary counts processed items.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Total returns the number of items seen.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// OK reports whether no item failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", s.Succeeded, s.Failed, s.Skipped)
}
