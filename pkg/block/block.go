package block

import (
	"fmt"
	"strings"
)

// Kind distinguishes the two block conventions found in a test source.
type Kind int

const (
	Helper Kind = iota
	TestCase
)

func (k Kind) String() string {
	switch k {
	case Helper:
		return "helper"
	case TestCase:
		return "test"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position represents an inclusive range of 0-based line indexes within a document.
type Position struct {
	Start int
	End   int
}

// Len returns the number of lines covered by the position.
func (p Position) Len() int {
	return p.End - p.Start + 1
}

// Block is one named helper routine or test case located in a document.
// MarkerLine is the index of the test marker, or -1 for helpers.
type Block struct {
	Kind       Kind
	Name       string
	Position   Position
	MarkerLine int
}

// String returns a short human readable form with 1-based line numbers.
func (b Block) String() string {
	return fmt.Sprintf("%s %s [%d-%d]", b.Kind, b.Name, b.Position.Start+1, b.Position.End+1)
}

// Convention describes how blocks are introduced and closed in the source text.
type Convention struct {
	Indent          string `yaml:"indent"`
	RoutineKeyword  string `yaml:"routine_keyword"`
	CloseToken      string `yaml:"close_token"`
	Marker          string `yaml:"marker"`
	AttributePrefix string `yaml:"attribute_prefix"`
}

// DefaultConvention matches functions inside a Rust `mod tests` block.
func DefaultConvention() Convention {
	return Convention{
		Indent:          "    ",
		RoutineKeyword:  "fn ",
		CloseToken:      "}",
		Marker:          "#[test]",
		AttributePrefix: "#[",
	}
}

// IsMarker reports whether line is a test marker at the block indentation.
func (c Convention) IsMarker(line string) bool {
	return trimTrailing(line) == c.Indent+c.Marker
}

// IsClosing reports whether line closes a block opened at the block indentation.
// A closing token at a deeper indentation does not count.
func (c Convention) IsClosing(line string) bool {
	return trimTrailing(line) == c.Indent+c.CloseToken
}

// IsAttribute reports whether line is an extra annotation that may sit between
// a marker and its declaration.
func (c Convention) IsAttribute(line string) bool {
	if c.AttributePrefix == "" {
		return false
	}
	return strings.HasPrefix(line, c.Indent+c.AttributePrefix) && !c.IsMarker(line)
}

// DeclaredName returns the routine name declared on line, if any.
// The name must be followed directly by an opening parenthesis.
func (c Convention) DeclaredName(line string) (string, bool) {
	prefix := c.Indent + c.RoutineKeyword
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	rest := line[len(prefix):]
	n := 0
	for n < len(rest) && isIdentByte(rest[n]) {
		n++
	}
	if n == 0 || n >= len(rest) || rest[n] != '(' {
		return "", false
	}
	return rest[:n], true
}

// Declares reports whether line declares the routine name exactly.
func (c Convention) Declares(line, name string) bool {
	if name == "" {
		return false
	}
	return strings.HasPrefix(line, c.Indent+c.RoutineKeyword+name+"(")
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func trimTrailing(line string) string {
	return strings.TrimRight(line, " \t\r")
}
