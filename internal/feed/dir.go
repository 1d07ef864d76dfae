package feed

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/store"
	"github.com/samber/do"
)

// DirSource lists outputs in a local directory. Only what the file name
// encodes is known, so entries carry no prompt or seed.
type DirSource struct {
	Dir string
}

func NewDirSource(i *do.Injector) (Source, error) {
	return &DirSource{Dir: do.MustInvokeNamed[string](i, "output_dir")}, nil
}

func (s *DirSource) Entries(context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		out, ok := store.ParseOutputName(f.Name(), time.Local)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Name:    f.Name(),
			Model:   string(out.Model),
			Updated: out.Time,
		})
	}
	return entries, nil
}
