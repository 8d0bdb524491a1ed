package report

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff compares the output currently on disk with a freshly generated
// one. It returns "" when they are identical.
func UnifiedDiff(path string, current, generated []byte) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return diff, nil
}
