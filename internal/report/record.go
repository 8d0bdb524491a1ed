// Package report reconciles the number of surviving test blocks against the
// number the exclusion lists imply, and renders the run summary.
package report

import (
	"testderive/internal/blocks"
	"testderive/internal/rewrite"
	"testderive/pkg/block"
)

// Record is the reconciliation of one run. A mismatch between ExpectedCount
// and ActualCount is a warning only.
type Record struct {
	OriginalCount int
	ExcludedCount int
	ExpectedCount int
	ActualCount   int

	// Exclusions that were never located. They explain most mismatches.
	MissingHelpers []string
	MissingTests   []string
}

// NewRecord computes the expected count from the original and excluded counts.
func NewRecord(original, excluded, actual int) Record {
	return Record{
		OriginalCount: original,
		ExcludedCount: excluded,
		ExpectedCount: original - excluded,
		ActualCount:   actual,
	}
}

// CountTests counts test blocks in doc using the same rule the remover uses.
func CountTests(loc *blocks.Locator, doc rewrite.Document) int {
	return loc.Count(doc, block.TestCase)
}

// Mismatch reports whether the surviving tests differ from the expected count.
func (r Record) Mismatch() bool {
	return r.ActualCount != r.ExpectedCount
}
