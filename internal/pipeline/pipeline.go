// Package pipeline runs one derivation: extract the configured line range,
// substitute the token, remove excluded helpers then excluded tests, and
// reconcile the surviving test count. Stages run strictly one after another,
// each consuming the previous stage's complete output.
package pipeline

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"testderive/internal/atomicfile"
	"testderive/internal/blocks"
	"testderive/internal/clock"
	"testderive/internal/config"
	"testderive/internal/parser"
	"testderive/internal/report"
	"testderive/internal/rewrite"
	"testderive/pkg/block"
)

// Pipeline derives a document according to one configuration.
type Pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	clock   clock.Clock
	locator *blocks.Locator
	remover *blocks.Remover
}

// Result describes a finished derivation.
type Result struct {
	OutputPath string
	Document   rewrite.Document
	Record     report.Record

	// Replacements is the number of token substitutions made.
	Replacements int
	// RangeWarning is set when the extraction bounds were clamped.
	RangeWarning *rewrite.RangeError
}

// Summary returns the printable summary of the result.
func (r *Result) Summary() report.Summary {
	return report.Summary{OutputPath: r.OutputPath, Record: r.Record}
}

// New returns a Pipeline for cfg. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger, clk clock.Clock) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	loc := blocks.NewLocator(cfg.Convention)
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		clock:   clk,
		locator: loc,
		remover: blocks.NewRemover(loc),
	}
}

// Run reads the source, derives the document and writes it atomically.
// Only I/O failures and strict range violations are returned as errors; a
// count mismatch is reported in the Result.
func (p *Pipeline) Run() (*Result, error) {
	res, err := p.Generate()
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(res.OutputPath, res.Document.Bytes(), 0o644); err != nil {
		p.logger.Error("Failed to write output", zap.String("path", res.OutputPath), zap.Error(err))
		return nil, &IOError{Op: "write", Path: res.OutputPath, Err: err}
	}
	p.logger.Debug("Output written", zap.String("path", res.OutputPath), zap.Int("lines", res.Document.Len()))
	return res, nil
}

// Generate is Run without the final write.
func (p *Pipeline) Generate() (*Result, error) {
	src, err := p.ReadSource()
	if err != nil {
		return nil, err
	}
	excl, err := p.Exclusions()
	if err != nil {
		return nil, err
	}
	return p.Derive(src, excl)
}

// ReadSource reads the configured source document.
func (p *Pipeline) ReadSource() (rewrite.Document, error) {
	path := p.cfg.Source()
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()
	doc, err := rewrite.ReadDocument(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	p.logger.Debug("Source read", zap.String("path", path), zap.Int("lines", doc.Len()))
	return doc, nil
}

// Exclusions returns the configured exclusion set merged with the exclusions
// file, if one is configured. The configuration itself is not modified.
func (p *Pipeline) Exclusions() (parser.Exclusions, error) {
	excl := parser.Exclusions{
		Helpers: p.cfg.ExcludedHelpers,
		Tests:   p.cfg.ExcludedTests,
	}.Merge(parser.Exclusions{})

	if path := p.cfg.Exclusions(); path != "" {
		fromFile, err := parser.ParseExclusionsFile(path)
		if err != nil {
			return parser.Exclusions{}, &IOError{Op: "read", Path: path, Err: err}
		}
		p.logger.Debug("Exclusions file parsed",
			zap.String("path", path),
			zap.Int("helpers", len(fromFile.Helpers)),
			zap.Int("tests", len(fromFile.Tests)))
		excl = excl.Merge(fromFile)
	}
	return excl, nil
}

// Prepare extracts the configured range and applies the token substitution.
func (p *Pipeline) Prepare(src rewrite.Document) (rewrite.Document, *Result, error) {
	res := &Result{OutputPath: p.cfg.Output()}

	doc, err := rewrite.Extract(src, p.cfg.LineRange, p.cfg.RangePolicy())
	if err != nil {
		var rerr *rewrite.RangeError
		if !errors.As(err, &rerr) || !rerr.Clamped {
			p.logger.Error("Invalid line range", zap.Error(err))
			return nil, nil, err
		}
		res.RangeWarning = rerr
		p.logger.Warn("Line range clamped", zap.Error(rerr), zap.Int("lines", doc.Len()))
	}
	p.logger.Debug("Range extracted", zap.Int("lines", doc.Len()))

	sub := p.cfg.TokenSubstitution
	doc, res.Replacements = rewrite.ReplaceToken(doc, sub.Old, sub.New)
	p.logger.Debug("Token substituted",
		zap.String("old", sub.Old),
		zap.String("new", sub.New),
		zap.Int("replacements", res.Replacements))

	return doc, res, nil
}

// Derive runs every transformation stage on src and reconciles the result.
func (p *Pipeline) Derive(src rewrite.Document, excl parser.Exclusions) (*Result, error) {
	start := p.clock.Now()

	doc, res, err := p.Prepare(src)
	if err != nil {
		return nil, err
	}

	original := p.cfg.OriginalTotalCount
	if original == 0 {
		original = report.CountTests(p.locator, doc)
		p.logger.Debug("Original test count derived from source", zap.Int("count", original))
	}

	doc, missingHelpers := p.remover.RemoveAll(doc, block.Helper, excl.Helpers)
	for _, name := range missingHelpers {
		p.logger.Warn("Excluded helper not found", zap.String("name", name))
	}
	doc, missingTests := p.remover.RemoveAll(doc, block.TestCase, excl.Tests)
	for _, name := range missingTests {
		p.logger.Warn("Excluded test not found", zap.String("name", name))
	}

	rec := report.NewRecord(original, len(excl.Tests), report.CountTests(p.locator, doc))
	rec.MissingHelpers = missingHelpers
	rec.MissingTests = missingTests
	if rec.Mismatch() {
		p.logger.Warn("Test count mismatch",
			zap.Int("actual", rec.ActualCount),
			zap.Int("expected", rec.ExpectedCount))
	}

	res.Document = doc
	res.Record = rec
	p.logger.Info("Document derived",
		zap.String("output", res.OutputPath),
		zap.Int("lines", doc.Len()),
		zap.Int("tests", rec.ActualCount),
		zap.Duration("elapsed", p.clock.Now().Sub(start)))
	return res, nil
}

// Blocks lists the blocks of the prepared (extracted and rewritten) source.
func (p *Pipeline) Blocks(src rewrite.Document) ([]block.Block, error) {
	doc, _, err := p.Prepare(src)
	if err != nil {
		return nil, err
	}
	return p.locator.Blocks(doc), nil
}
