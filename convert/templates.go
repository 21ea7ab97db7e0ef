package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"factbatch/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	SourceFile  string // base name without event file extensions
	SourceDir   string // relative directory of the source, "." when none
	Format      string // event format of the source
	Compression string // output compression
	RefID       string
	Events      int
	Facts       int
}

func newValues(src string, es eventSource, refID string, events, facts int, cfg *config.OutputConfig) Values {
	base, _, _ := splitEventName(filepath.Base(src))
	return Values{
		SourceFile:  base,
		SourceDir:   filepath.ToSlash(filepath.Dir(src)),
		Format:      es.format.String(),
		Compression: cfg.Compression.String(),
		RefID:       refID,
		Events:      events,
		Facts:       facts,
	}
}

func expandTemplate(values Values, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
