// Package parser reads note files: YAML frontmatter followed by Markdown
// "## Field" sections.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/kwm/internal/models"
)

// DefaultField names the single field of a file without field headings.
const DefaultField = "Text"

// Frontmatter holds the note metadata.
type Frontmatter struct {
	Deck    string `yaml:"deck"`
	Cards   int    `yaml:"cards"`
	Reviews int    `yaml:"reviews"`
}

// Result holds the output of parsing a note file.
type Result struct {
	Frontmatter Frontmatter
	Fields      []models.Field
}

// Parse extracts frontmatter and fields from raw note bytes. Cards defaults
// to 1 and negative reviews are clamped to 0.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	if fm.Cards <= 0 {
		fm.Cards = 1
	}
	if fm.Reviews < 0 {
		fm.Reviews = 0
	}
	return &Result{
		Frontmatter: fm,
		Fields:      extractFields(body),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Content without frontmatter is all body.
func splitFrontmatter(data []byte) (Frontmatter, string, error) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return fm, "", fmt.Errorf("parser: frontmatter: %w", err)
	}
	return fm, body, nil
}

// extractFields splits body on "## Name" headings. Text before the first
// heading is dropped when headings exist; a body without headings becomes the
// single DefaultField. Field values are trimmed.
func extractFields(body string) []models.Field {
	var (
		fields  []models.Field
		current *models.Field
		buf     []string
	)
	flush := func() {
		if current != nil {
			current.Value = strings.TrimSpace(strings.Join(buf, "\n"))
			fields = append(fields, *current)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if name, ok := strings.CutPrefix(trimmed, "## "); ok {
			flush()
			current = &models.Field{Name: strings.TrimSpace(name)}
			continue
		}
		buf = append(buf, trimmed)
	}
	flush()

	if len(fields) == 0 {
		return []models.Field{{Name: DefaultField, Value: strings.TrimSpace(body)}}
	}
	return fields
}
