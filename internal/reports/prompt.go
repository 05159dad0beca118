package reports

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

type promptData struct {
	Name     string
	Text     string
	Language string
}

// Prompt renders the report instructions for a document.
type Prompt struct {
	tmpl     *template.Template
	maxChars int
	language string
}

// NewPrompt parses the template at path, or the embedded default when path
// is empty.
func NewPrompt(path string, maxChars int, language string) (*Prompt, error) {
	var (
		tmpl *template.Template
		err  error
	)

	if path == "" {
		tmpl, err = template.ParseFS(templates, "templates/report.tmpl")
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			tmpl, err = template.New("report").Parse(string(data))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return &Prompt{tmpl: tmpl, maxChars: maxChars, language: language}, nil
}

// Render fills the template with the document name and its text, truncated
// to the configured character limit.
func (p *Prompt) Render(name, text string) (string, error) {
	var sb strings.Builder
	data := promptData{
		Name:     name,
		Text:     truncate(text, p.maxChars),
		Language: p.language,
	}
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
