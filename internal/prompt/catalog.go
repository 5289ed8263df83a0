package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/phrazzld/puterbatch/internal/domain"
	"gopkg.in/yaml.v3"
)

// defaultTemplate is used for shot types without a template in the catalog.
const defaultTemplate = `You are given a question about the API "{{.API}}".
{{- if .Shots}}

Here are some examples:
{{range $i, $s := .Shots}}
Example {{inc $i}}:
Question: {{$s.Question}}
Answer: {{$s.Answer}}
{{end}}
{{- end}}

Question: {{.Question}}
Answer:`

// catalogFile is the YAML layout of a shot catalog.
type catalogFile struct {
	Templates map[string]string                   `yaml:"templates"`
	APIs      map[string]map[string][]domain.Shot `yaml:"apis"`
}

// promptData represents the data passed to a prompt template
type promptData struct {
	API      string
	Question string
	Shots    []domain.Shot
}

// Catalog holds few-shot examples per API label and shot type, and the
// parsed prompt template per shot type. It is read-only after loading.
type Catalog struct {
	shots     map[string]map[string][]domain.Shot
	templates map[string]*template.Template
	fallback  *template.Template
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// LoadCatalog reads and parses a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shot catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML catalog. Templates are parsed eagerly so a
// broken template fails the run at startup rather than every record.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode shot catalog: %w", err)
	}

	fallback, err := template.New("default").Funcs(funcs).Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse default prompt template: %w", err)
	}

	c := &Catalog{
		shots:     file.APIs,
		templates: make(map[string]*template.Template, len(file.Templates)),
		fallback:  fallback,
	}
	if c.shots == nil {
		c.shots = map[string]map[string][]domain.Shot{}
	}

	for shotType, text := range file.Templates {
		tmpl, err := template.New(shotType).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt template %q: %w", shotType, err)
		}
		c.templates[shotType] = tmpl
	}

	return c, nil
}

// GenerateShot returns the first number shots of shotType for api.
// Asking for zero shots never fails.
func (c *Catalog) GenerateShot(api string, number int, shotType string) ([]domain.Shot, error) {
	if number <= 0 {
		return nil, nil
	}

	byType, ok := c.shots[api]
	if !ok {
		return nil, &ConstructionError{API: api, ShotType: shotType, Err: fmt.Errorf("%w: unknown api", ErrNoShots)}
	}

	shots := byType[shotType]
	if len(shots) < number {
		return nil, &ConstructionError{
			API:      api,
			ShotType: shotType,
			Err:      fmt.Errorf("%w: want %d, have %d", ErrNoShots, number, len(shots)),
		}
	}

	out := make([]domain.Shot, number)
	copy(out, shots[:number])
	return out, nil
}

// GeneratePrompt renders the prompt for a question with its shots.
func (c *Catalog) GeneratePrompt(api, question string, shots []domain.Shot, shotType string) (string, error) {
	tmpl, ok := c.templates[shotType]
	if !ok {
		tmpl = c.fallback
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{API: api, Question: question, Shots: shots}); err != nil {
		return "", &ConstructionError{API: api, ShotType: shotType, Err: fmt.Errorf("execute template: %w", err)}
	}

	return buf.String(), nil
}
