package rewrite

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single source line; generated test files can carry long literals.
const maxLineSize = 1 << 20

// Document is an ordered sequence of text lines without their terminators.
// Every transformation returns a new Document; none modifies its input.
type Document []string

// ReadDocument splits r into lines. A trailing newline does not produce an empty
// final line and "\r\n" terminators are normalised to "\n".
func ReadDocument(r io.Reader) (Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var doc Document
	for scanner.Scan() {
		doc = append(doc, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, nil
}

// ParseDocument is ReadDocument over an in-memory string.
func ParseDocument(content string) (Document, error) {
	return ReadDocument(strings.NewReader(content))
}

// Len returns the number of lines.
func (d Document) Len() int {
	return len(d)
}

// Clone returns a copy that shares no backing array with d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	cpy := make(Document, len(d))
	copy(cpy, d)
	return cpy
}

// Bytes renders the document with "\n" after every line.
// An empty document renders as no bytes at all.
func (d Document) Bytes() []byte {
	var buf bytes.Buffer
	for _, line := range d {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// String is Bytes as a string.
func (d Document) String() string {
	return string(d.Bytes())
}
