// Package blocks locates and removes named helper and test blocks in a
// line-oriented source document without parsing the host language.
package blocks

import (
	"testderive/internal/rewrite"
	"testderive/pkg/block"
)

type scanState int

const (
	scanning scanState = iota
	candidateMarker
	inBlock
)

// Locator identifies block boundaries. It never modifies the documents it reads.
type Locator struct {
	conv block.Convention
}

// NewLocator returns a Locator for the given convention.
func NewLocator(conv block.Convention) *Locator {
	return &Locator{conv: conv}
}

// Convention returns the convention the locator matches against.
func (l *Locator) Convention() block.Convention {
	return l.conv
}

// Blocks returns every complete block of either kind in document order.
//
// A marker line only opens a test block when the next non-attribute line is a
// declaration; otherwise the marker is ordinary text and scanning resumes on
// the line after it. A block that meets another block start, or the end of the
// document, before its closing line is unterminated and is not reported.
func (l *Locator) Blocks(doc rewrite.Document) []block.Block {
	var (
		blocks []block.Block
		cur    block.Block
		state  = scanning
	)
	for i := 0; i < len(doc); i++ {
		line := doc[i]
		switch state {
		case scanning:
			if l.conv.IsMarker(line) {
				cur = block.Block{Kind: block.TestCase, MarkerLine: i, Position: block.Position{Start: i}}
				state = candidateMarker
				continue
			}
			if name, ok := l.conv.DeclaredName(line); ok {
				cur = block.Block{Kind: block.Helper, Name: name, MarkerLine: -1, Position: block.Position{Start: i}}
				state = inBlock
			}

		case candidateMarker:
			if l.conv.IsAttribute(line) {
				continue
			}
			if name, ok := l.conv.DeclaredName(line); ok {
				cur.Name = name
				state = inBlock
				continue
			}
			// Not a test after all; rescan from the line following the marker.
			i = cur.MarkerLine
			state = scanning

		case inBlock:
			if l.conv.IsClosing(line) {
				cur.Position.End = i
				blocks = append(blocks, cur)
				state = scanning
				continue
			}
			if l.startsBlock(line) {
				// The open block never closed at its own indentation.
				i--
				state = scanning
			}
		}
	}
	return blocks
}

func (l *Locator) startsBlock(line string) bool {
	if l.conv.IsMarker(line) {
		return true
	}
	_, ok := l.conv.DeclaredName(line)
	return ok
}

// Find returns the first block of kind whose name is exactly name.
func (l *Locator) Find(doc rewrite.Document, kind block.Kind, name string) (block.Block, bool) {
	for _, b := range l.Blocks(doc) {
		if b.Kind == kind && b.Name == name {
			return b, true
		}
	}
	return block.Block{}, false
}

// Count returns the number of blocks of kind in doc.
func (l *Locator) Count(doc rewrite.Document, kind block.Kind) int {
	n := 0
	for _, b := range l.Blocks(doc) {
		if b.Kind == kind {
			n++
		}
	}
	return n
}
