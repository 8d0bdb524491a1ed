package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Exclusions are the block names listed in a markdown exclusions file.
type Exclusions struct {
	Helpers []string
	Tests   []string
}

// Merge returns e followed by other, with blank and repeated names dropped.
// First-seen order is kept.
func (e Exclusions) Merge(other Exclusions) Exclusions {
	return Exclusions{
		Helpers: appendUnique(nil, append(append([]string(nil), e.Helpers...), other.Helpers...)...),
		Tests:   appendUnique(nil, append(append([]string(nil), e.Tests...), other.Tests...)...),
	}
}

func appendUnique(dst []string, names ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(names))
	for _, n := range dst {
		seen[n] = struct{}{}
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		dst = append(dst, n)
	}
	return dst
}

type section int

const (
	sectionNone section = iota
	sectionHelpers
	sectionTests
)

// ParseExclusionsFile reads the markdown file and extracts the helper and test
// names to exclude.
func ParseExclusionsFile(filename string) (Exclusions, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Exclusions{}, fmt.Errorf("failed to read exclusions file %s: %w", filename, err)
	}
	return ParseExclusions(content), nil
}

// ParseExclusions extracts names from list items under headings mentioning
// "helper" or "test". The name is the item's first code span, or failing that
// its first identifier. Checked task items ("- [x] ...") are resolved and skipped.
func ParseExclusions(source []byte) Exclusions {
	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	root := md.Parser().Parse(text.NewReader(source))

	var (
		out     Exclusions
		current = sectionNone
	)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			current = classify(plainText(node, source))
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if current == sectionNone || isChecked(node) {
				return ast.WalkSkipChildren, nil
			}
			name := itemName(node, source)
			if name == "" {
				return ast.WalkSkipChildren, nil
			}
			if current == sectionHelpers {
				out.Helpers = append(out.Helpers, name)
			} else {
				out.Tests = append(out.Tests, name)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func classify(heading string) section {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "helper"):
		return sectionHelpers
	case strings.Contains(h, "test"):
		return sectionTests
	default:
		return sectionNone
	}
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func isChecked(item *ast.ListItem) bool {
	checked := false
	_ = ast.Walk(item, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, nested := c.(*ast.List); nested && entering {
			return ast.WalkSkipChildren, nil
		}
		if box, ok := c.(*extast.TaskCheckBox); ok && entering {
			checked = box.IsChecked
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return checked
}

func itemName(item *ast.ListItem, source []byte) string {
	var (
		code string
		sb   strings.Builder
	)
	_ = ast.Walk(item, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.List:
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			code = strings.TrimSpace(plainText(node, source))
			return ast.WalkStop, nil
		case *ast.Text:
			// Emphasis delimiters such as '_' split identifiers across Text nodes.
			sb.Write(node.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	if code != "" {
		return code
	}
	return leadingIdent(sb.String())
}

// leadingIdent returns the identifier at the start of s, after leading spaces.
func leadingIdent(s string) string {
	s = strings.TrimSpace(s)
	n := 0
	for n < len(s) {
		b := s[n]
		if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			n++
			continue
		}
		break
	}
	return s[:n]
}
