package rewrite

import (
	"fmt"
	"strings"
)

// Range is a 1-indexed inclusive line range. A zero Start means the first line
// and a zero End means the last line.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Policy selects how Extract treats bounds that fall outside the document.
type Policy int

const (
	// Clamp adjusts the bounds to the document and reports the adjustment.
	Clamp Policy = iota
	// Strict refuses to extract anything when the bounds are invalid.
	Strict
)

// RangeError describes extraction bounds that did not fit the document.
// In Clamp mode it accompanies a usable (clamped) result.
type RangeError struct {
	Start   int
	End     int
	Lines   int
	Clamped bool
}

func (e *RangeError) Error() string {
	msg := fmt.Sprintf("line range %d..%d invalid for document of %d lines", e.Start, e.End, e.Lines)
	if e.Clamped {
		msg += " (clamped)"
	}
	return msg
}

// Extract returns lines start..end of d. Under Clamp, out-of-range bounds are
// clamped and a *RangeError with Clamped set is returned alongside the result;
// under Strict, the result is empty whenever a *RangeError is returned.
func Extract(d Document, r Range, p Policy) (Document, error) {
	if len(d) == 0 && r == (Range{}) {
		return Document{}, nil
	}
	start, end := r.Start, r.End
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(d)
	}

	bad := start < 1 || end > len(d) || start > end
	if !bad {
		return d[start-1 : end].Clone(), nil
	}

	rerr := &RangeError{Start: r.Start, End: r.End, Lines: len(d)}
	if p == Strict {
		return Document{}, rerr
	}

	rerr.Clamped = true
	if start < 1 {
		start = 1
	}
	if end > len(d) {
		end = len(d)
	}
	if start > end {
		return Document{}, rerr
	}
	return d[start-1 : end].Clone(), rerr
}

// ReplaceToken replaces every non-overlapping occurrence of old with repl on
// each line, left to right. It returns the new document and the number of
// replacements made. An empty old leaves the document unchanged.
func ReplaceToken(d Document, old, repl string) (Document, int) {
	out := d.Clone()
	if old == "" {
		return out, 0
	}
	count := 0
	for i, line := range out {
		if n := strings.Count(line, old); n > 0 {
			out[i] = strings.ReplaceAll(line, old, repl)
			count += n
		}
	}
	return out, count
}
