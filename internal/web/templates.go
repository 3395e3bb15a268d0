package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/justestif/go-dinner-vibe/internal/flow"
	"github.com/justestif/go-dinner-vibe/internal/mood"
)

// snippetLimit is the number of characters of a review shown on a place card.
const snippetLimit = 60

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	partials  *template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial template (without base layout) with the given data.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	if t.partials == nil || t.partials.Lookup(partial) == nil {
		return fmt.Errorf("partial %q not found", partial)
	}
	return t.partials.ExecuteTemplate(w, partial, data)
}

// load parses all templates from the filesystem.
// Partials define named templates and may reference each other.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".html")

		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	if len(partials) > 0 {
		tmpl, err := template.New("partials").Funcs(t.funcs).ParseFS(templatesFS, partials...)
		if err != nil {
			return fmt.Errorf("parsing partials: %w", err)
		}
		t.partials = tmpl
	}

	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate":         truncate,
		"placeholderImage": placeholderImage,
		"lines":            lines,

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// truncate shortens s to n characters followed by "...".
func truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// placeholderImage returns a deterministic stock image URL for the place at index i.
func placeholderImage(i int) string {
	return fmt.Sprintf("https://picsum.photos/400/200?random=%d", i+10)
}

// lines splits narrative text into paragraphs.
func lines(s string) []string {
	return strings.Split(s, "\n")
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	CurrentPath string
}

// ViewData is the state-dependent part of the page. It is rendered both
// inside the full page and as the "view" fragment.
type ViewData struct {
	State           flow.State
	Step            string
	Moods           []mood.Preset
	BrowserLocation bool // the page must run the Geolocation API
	SnippetLimit    int
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	ViewData
}

func newViewData(s flow.State, browserLocation bool) ViewData {
	return ViewData{
		State:           s,
		Step:            s.Step.String(),
		Moods:           mood.List(),
		BrowserLocation: browserLocation,
		SnippetLimit:    snippetLimit,
	}
}
