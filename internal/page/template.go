package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/stabilitybot/internal/log"
)

//go:embed assets/index.html
var indexTmpl string

// Image is one model's entry on the page: File when it succeeded, Error when
// it did not.
type Image struct {
	Model string
	File  string
	Error string
}

type Params struct {
	Prompt         string
	NegativePrompt string
	Seed           string
	Images         []Image
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating page", "images", len(params.Images))

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
