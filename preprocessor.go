package compileoutput

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/mdbook-compile-output/internal/book"
)

// Name identifies the preprocessor to mdBook.
const Name = "compile-output-preprocessor"

// Preprocessor rewrites the markers of every non-draft chapter in a book.
type Preprocessor struct {
	compiler Compiler
	logger   *zap.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithCompiler sets the strategy that turns a step into text.
func WithCompiler(c Compiler) Option {
	return func(p *Preprocessor) {
		if c != nil {
			p.compiler = c
		}
	}
}

// WithLogger sets the logger used for per-chapter diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Preprocessor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPreprocessor creates a Preprocessor. Without options it runs
// "cargo test --release" under rust_stages and logs nothing.
func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		compiler: NewCommandCompiler(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the preprocessor name.
func (p *Preprocessor) Name() string {
	return Name
}

// Run decodes a [context, book] request as mdBook writes it to a
// preprocessor's stdin and returns the rewritten book JSON. Fields that are
// not chapter content are copied byte for byte.
func (p *Preprocessor) Run(ctx context.Context, request []byte) ([]byte, error) {
	req, err := book.ParseRequest(request)
	if err != nil {
		return nil, err
	}
	if err := p.rewriteBook(ctx, req.Book); err != nil {
		return nil, err
	}
	return req.Book.Bytes(), nil
}

// RunBook is Run for a bare book object, for callers that have already
// split the request.
func (p *Preprocessor) RunBook(ctx context.Context, bookJSON []byte) ([]byte, error) {
	b, err := book.Parse(bookJSON)
	if err != nil {
		return nil, err
	}
	if err := p.rewriteBook(ctx, b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// rewriteBook edits b in place, one chapter at a time in document order.
// The first failing step aborts; b must then be discarded.
func (p *Preprocessor) rewriteBook(ctx context.Context, b *book.Book) error {
	for _, ch := range b.Chapters() {
		if ch.Draft {
			p.logger.Debug("skipping draft chapter", zap.String("chapter", ch.Name))
			continue
		}

		content, err := Rewrite(ctx, ch.Content, p.compiler)
		if err != nil {
			return fmt.Errorf("chapter %q: %w", ch.Name, err)
		}
		if content == ch.Content {
			continue
		}

		if err := b.SetContent(ch, content); err != nil {
			return err
		}
	}
	return nil
}
