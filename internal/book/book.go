// Package book reads and edits the JSON that mdBook exchanges with
// preprocessors.
//
// The book is kept as raw JSON. Chapters are located with gjson paths and
// rewritten with sjson, so every field this package does not touch (known
// or not) is written back byte for byte.
package book

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Sentinel errors for protocol decoding.
var (
	ErrInvalidRequest = errors.New("invalid preprocessor request")
	ErrInvalidBook    = errors.New("invalid book")
)

// itemListKeys are the fields holding the top-level items, in lookup order.
// mdBook renamed "sections" to "items" in 0.5.
var itemListKeys = []string{"sections", "items"}

// Request is the [context, book] pair mdBook writes to a preprocessor's stdin.
type Request struct {
	Context Context
	Book    *Book
}

// Context is the part of the preprocessor context this program reads.
type Context struct {
	Root          string
	Renderer      string
	MdbookVersion string
	Config        []byte // book.toml as JSON; nil when absent
}

// ParseRequest decodes a [context, book] array.
func ParseRequest(data []byte) (*Request, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidRequest)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidRequest)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected [context, book] array", ErrInvalidRequest)
	}
	parts := root.Array()
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 elements, got %d", ErrInvalidRequest, len(parts))
	}
	if !parts[0].IsObject() {
		return nil, fmt.Errorf("%w: context must be an object", ErrInvalidRequest)
	}

	b, err := Parse([]byte(parts[1].Raw))
	if err != nil {
		return nil, err
	}

	return &Request{Context: parseContext(parts[0]), Book: b}, nil
}

func parseContext(v gjson.Result) Context {
	ctx := Context{
		Root:          v.Get("root").String(),
		Renderer:      v.Get("renderer").String(),
		MdbookVersion: v.Get("mdbook_version").String(),
	}
	if cfg := v.Get("config"); cfg.IsObject() {
		ctx.Config = []byte(cfg.Raw)
	}
	return ctx
}

// Book is a document tree held as raw JSON.
type Book struct {
	raw      []byte
	itemsKey string
}

// Parse validates a book object and locates its item list.
func Parse(data []byte) (*Book, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidBook)
	}
	v := gjson.ParseBytes(data)
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidBook)
	}

	for _, key := range itemListKeys {
		list := v.Get(key)
		if !list.Exists() {
			continue
		}
		if !list.IsArray() {
			return nil, fmt.Errorf("%w: %q is not an array", ErrInvalidBook, key)
		}
		raw := make([]byte, len(data))
		copy(raw, data)
		return &Book{raw: raw, itemsKey: key}, nil
	}

	return nil, fmt.Errorf("%w: missing sections", ErrInvalidBook)
}

// Bytes returns the book JSON including any edits.
func (b *Book) Bytes() []byte {
	return b.raw
}

// Chapter is a snapshot of one chapter in the tree.
type Chapter struct {
	Name    string
	Content string
	Path    string
	Number  []int
	Draft   bool // no backing file; content must not be touched

	key string // gjson path of the chapter object
}

// Chapters returns every chapter, depth first in document order.
// Separators and part titles are not chapters.
func (b *Book) Chapters() []Chapter {
	var chapters []Chapter
	collect(gjson.GetBytes(b.raw, b.itemsKey), b.itemsKey, &chapters)
	return chapters
}

func collect(items gjson.Result, prefix string, out *[]Chapter) {
	for i, item := range items.Array() {
		obj := item.Get("Chapter")
		if !obj.IsObject() {
			continue
		}
		key := prefix + "." + strconv.Itoa(i) + ".Chapter"
		*out = append(*out, newChapter(obj, key))
		collect(obj.Get("sub_items"), key+".sub_items", out)
	}
}

func newChapter(obj gjson.Result, key string) Chapter {
	path := obj.Get("path")
	ch := Chapter{
		Name:    obj.Get("name").String(),
		Content: obj.Get("content").String(),
		Path:    path.String(),
		Draft:   !path.Exists() || path.Type == gjson.Null,
		key:     key,
	}
	for _, n := range obj.Get("number").Array() {
		ch.Number = append(ch.Number, int(n.Int()))
	}
	return ch
}

// SetContent replaces the content of a chapter returned by Chapters.
func (b *Book) SetContent(ch Chapter, content string) error {
	if ch.key == "" {
		return fmt.Errorf("%w: chapter %q does not belong to this book", ErrInvalidBook, ch.Name)
	}
	raw, err := sjson.SetBytes(b.raw, ch.key+".content", content)
	if err != nil {
		return fmt.Errorf("setting content of chapter %q: %w", ch.Name, err)
	}
	b.raw = raw
	return nil
}
