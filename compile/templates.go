package compile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"ghostkit/config"
	"ghostkit/misc"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	App     string
	Version string
	Title   string
	Source  string
	Format  string
	Blocks  int
	Styled  int
}

func expandTemplate(r *result, name, field string, format config.OutputFormat) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		App:     misc.GetAppName(),
		Version: misc.GetVersion(),
		Title:   r.doc.Title,
		Source:  filepath.ToSlash(r.doc.Source),
		Format:  string(format),
		Blocks:  r.doc.Len(),
		Styled:  len(r.bindings),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
