package blocks

import (
	"testderive/internal/rewrite"
	"testderive/pkg/block"
)

// Remover drops named blocks from a document.
type Remover struct {
	loc *Locator
}

// NewRemover returns a Remover that finds blocks with loc.
func NewRemover(loc *Locator) *Remover {
	return &Remover{loc: loc}
}

// Remove returns a copy of doc without any block of kind named name. For test
// blocks the marker line, and any attribute lines after it, go too. Duplicate
// names are not disambiguated: every match is removed. The boolean reports
// whether anything matched; a missing name yields an unchanged copy.
func (r *Remover) Remove(doc rewrite.Document, kind block.Kind, name string) (rewrite.Document, bool) {
	rw := rewrite.NewDocumentRewriter(doc)
	found := false
	for _, b := range r.loc.Blocks(doc) {
		if b.Kind != kind || b.Name != name {
			continue
		}
		if err := rw.ReplaceLines(b.Position.Start, b.Position.End, nil); err != nil {
			// Blocks are ordered and disjoint, so this means a locator bug;
			// fall back to passing the document through.
			return doc.Clone(), false
		}
		found = true
	}
	rw.CopyRemainingLines()
	return rw.Document(), found
}

// RemoveAll runs Remove once per name, in order, each pass consuming the
// previous pass's output. It returns the final document and the names that
// could not be located.
func (r *Remover) RemoveAll(doc rewrite.Document, kind block.Kind, names []string) (rewrite.Document, []string) {
	out := doc.Clone()
	var missing []string
	for _, name := range names {
		var found bool
		out, found = r.Remove(out, kind, name)
		if !found {
			missing = append(missing, name)
		}
	}
	return out, missing
}
