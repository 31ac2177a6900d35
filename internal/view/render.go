package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/terra-clan/coding-tracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// loadingRefresh is how often the loading panel reloads itself
const loadingRefresh = 2

var languageLabels = map[models.Language]string{
	models.LanguagePython:     "Python",
	models.LanguageJavaScript: "JavaScript",
	models.LanguageJava:       "Java",
}

// Renderer turns a State into HTML. Output depends on the state alone.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the whole page for s
func (r *Renderer) Render(w io.Writer, s State) error {
	return r.tmpl.ExecuteTemplate(w, "page", newPage(s))
}

// RenderFeedback writes only the feedback region
func (r *Renderer) RenderFeedback(w io.Writer, fb models.Feedback) error {
	return r.tmpl.ExecuteTemplate(w, "feedback", fb)
}

type card struct {
	ID         string
	Title      string
	Summary    string
	Difficulty models.Difficulty
}

type testCase struct {
	Number int
	Input  string
	Output string
}

type languageOption struct {
	Value    models.Language
	Label    string
	Selected bool
}

type page struct {
	Panel  Panel
	Notice string

	Cards     []card
	ListError string

	Challenge *models.Challenge
	TestCases []testCase
	Code      string
	Languages []languageOption

	Loading        bool
	Loader         string
	RefreshSeconds int
	Feedback       *models.Feedback
	FeedbackError  string
}

func newPage(s State) page {
	p := page{
		Panel:          s.Panel,
		Notice:         s.Notice,
		ListError:      s.ListError,
		Challenge:      s.Current,
		Code:           s.Code,
		Loading:        s.Loading,
		Loader:         MessageLoading,
		RefreshSeconds: loadingRefresh,
		Feedback:       s.Feedback,
		FeedbackError:  s.FeedbackError,
	}
	if p.Panel == "" {
		p.Panel = PanelListing
	}

	for _, c := range s.Challenges {
		p.Cards = append(p.Cards, card{
			ID:         c.ID,
			Title:      c.Title,
			Summary:    c.Summary(),
			Difficulty: c.Difficulty,
		})
	}

	if s.Current != nil {
		for i, tc := range s.Current.TestCases {
			p.TestCases = append(p.TestCases, testCase{Number: i + 1, Input: tc.Input, Output: tc.Output})
		}
	}

	selected := s.Language
	if !selected.Valid() {
		selected = models.DefaultLanguage
	}
	for _, lang := range models.Languages {
		p.Languages = append(p.Languages, languageOption{
			Value:    lang,
			Label:    languageLabels[lang],
			Selected: lang == selected,
		})
	}

	return p
}
