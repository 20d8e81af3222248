// Package highlight renders snippets to HTML using chroma.
//
// The package has two responsibilities: the Registry captures the set of
// lexer and style names known to chroma once at startup (the closed sets that
// snippet language/style fields are validated against), and the Renderer
// turns a snippet into either an embeddable HTML fragment or a standalone
// document.
package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"

	"github.com/sakif/pastebin/internal/config"
	"github.com/sakif/pastebin/internal/model"
)

// Registry holds the known lexer and style names, queried from chroma once
// and cached for the process lifetime. Lookups are case-insensitive, matching
// chroma's own resolution, and lexer aliases ("py", "golang") count as known.
type Registry struct {
	languages map[string]struct{}
	styles    map[string]struct{}
}

// NewRegistry captures chroma's registered lexers and styles.
func NewRegistry() *Registry {
	r := &Registry{
		languages: make(map[string]struct{}),
		styles:    make(map[string]struct{}),
	}
	for _, name := range lexers.Names(true) {
		r.languages[strings.ToLower(name)] = struct{}{}
	}
	for _, name := range styles.Names() {
		r.styles[strings.ToLower(name)] = struct{}{}
	}
	return r
}

// KnownLanguage reports whether name resolves to a registered lexer.
func (r *Registry) KnownLanguage(name string) bool {
	_, ok := r.languages[strings.ToLower(name)]
	return ok
}

// KnownStyle reports whether name is a registered style.
func (r *Registry) KnownStyle(name string) bool {
	_, ok := r.styles[strings.ToLower(name)]
	return ok
}

// Renderer produces HTML renderings of snippets. Defaults for language and
// style come from the configured options; per-snippet display flags come from
// the snippet itself.
type Renderer struct {
	opts *config.Options
}

// NewRenderer creates a Renderer reading defaults from opts.
func NewRenderer(opts *config.Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render highlights the snippet's content. With full set it returns a
// complete standalone HTML document; otherwise an HTML fragment preceded by a
// style block carrying the CSS the fragment needs.
//
// Lexer resolution order: the snippet's explicit language, else content
// analysis when lexer guessing is enabled, else the configured default
// language. An explicit language that doesn't resolve is an error; the
// validation layer keeps that from being stored, so hitting it means the
// configuration or data is inconsistent.
func (r *Renderer) Render(s *model.Snippet, full bool) (string, error) {
	lexer, err := r.resolveLexer(s)
	if err != nil {
		return "", err
	}

	styleName := s.Style
	if styleName == "" {
		styleName = r.opts.DefaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(s.LineNumbers),
	)

	iterator, err := lexer.Tokenise(nil, s.Content)
	if err != nil {
		return "", fmt.Errorf("highlight: tokenising content: %w", err)
	}

	var code strings.Builder
	if err := formatter.Format(&code, style, iterator); err != nil {
		return "", fmt.Errorf("highlight: formatting content: %w", err)
	}

	var css strings.Builder
	if err := formatter.WriteCSS(&css, style); err != nil {
		return "", fmt.Errorf("highlight: writing style defs: %w", err)
	}

	title := ""
	if s.Title != "" && s.EmbedTitle {
		title = s.Title
	}

	if full {
		return fullDocument(title, css.String(), code.String()), nil
	}
	return fragment(title, css.String(), code.String()), nil
}

func (r *Renderer) resolveLexer(s *model.Snippet) (chroma.Lexer, error) {
	var lexer chroma.Lexer
	switch {
	case s.Language != "":
		lexer = lexers.Get(s.Language)
		if lexer == nil {
			return nil, fmt.Errorf("highlight: unknown language %q", s.Language)
		}
	case r.opts.GuessLexer:
		lexer = lexers.Analyse(s.Content)
	}

	if lexer == nil {
		lexer = lexers.Get(r.opts.DefaultLanguage)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer), nil
}

// fragment wraps the highlighted code with its CSS inlined in a preceding
// style block, so the fragment renders correctly without an external
// stylesheet.
func fragment(title, css, code string) string {
	var b strings.Builder
	b.WriteString(`<style type="text/css">`)
	b.WriteString(css)
	b.WriteString("</style>")
	if title != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(title))
	}
	b.WriteString(code)
	return b.String()
}

// fullDocument wraps the highlighted code in a complete standalone HTML page.
func fullDocument(title, css, code string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style type=\"text/css\">\n")
	b.WriteString(css)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	if title != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(title))
	}
	b.WriteString(code)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
