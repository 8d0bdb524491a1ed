package rewrite

import "fmt"

// LineRewriter lets you copy/cut/paste at the granularity of whole lines.
type LineRewriter interface {
	// CopyLinesUntil copies original lines [pos..lineIndex-1], positioning the cursor at lineIndex.
	CopyLinesUntil(lineIndex int) error

	// ReplaceLines replaces all original lines from startLine through endLine (inclusive)
	// with newLines. A nil newLines removes the range.
	//
	// Internally, this means:
	//   1. Copy any lines < startLine
	//   2. Consume (skip) original lines [startLine..endLine]
	//   3. Append each line from newLines
	//   4. Leave the cursor at endLine+1, ready for further Copy/Replace calls
	ReplaceLines(startLine, endLine int, newLines []string) error

	// CopyRemainingLines copies all leftover original lines.
	CopyRemainingLines()

	// Document returns the rewritten document.
	Document() Document
}

// DocumentRewriter implements LineRewriter over an in-memory Document.
// Ranges must be supplied in ascending, non-overlapping order.
type DocumentRewriter struct {
	src    Document
	output Document
	pos    int // index of the next original line to consume
}

// NewDocumentRewriter constructs a DocumentRewriter reading from src.
// src is never modified.
func NewDocumentRewriter(src Document) *DocumentRewriter {
	return &DocumentRewriter{
		src:    src,
		output: make(Document, 0, len(src)),
	}
}

// CopyLinesUntil copies original lines up to (not including) lineIndex.
func (rw *DocumentRewriter) CopyLinesUntil(lineIndex int) error {
	if lineIndex < rw.pos {
		return fmt.Errorf("line %d already consumed (cursor at %d)", lineIndex, rw.pos)
	}
	if lineIndex > len(rw.src) {
		lineIndex = len(rw.src)
	}
	rw.output = append(rw.output, rw.src[rw.pos:lineIndex]...)
	rw.pos = lineIndex
	return nil
}

// ReplaceLines replaces original lines startLine..endLine (inclusive) with newLines.
func (rw *DocumentRewriter) ReplaceLines(startLine, endLine int, newLines []string) error {
	if endLine < startLine {
		return fmt.Errorf("invalid line range %d..%d", startLine, endLine)
	}
	// 1) Copy up to startLine.
	if err := rw.CopyLinesUntil(startLine); err != nil {
		return err
	}
	// 2) Skip [startLine..endLine].
	rw.pos = endLine + 1
	if rw.pos > len(rw.src) {
		rw.pos = len(rw.src)
	}
	// 3) Append the replacement.
	rw.output = append(rw.output, newLines...)
	return nil
}

// CopyRemainingLines copies all lines from the cursor through the end.
func (rw *DocumentRewriter) CopyRemainingLines() {
	rw.output = append(rw.output, rw.src[rw.pos:]...)
	rw.pos = len(rw.src)
}

// Document returns the rewritten document.
func (rw *DocumentRewriter) Document() Document {
	return rw.output
}
