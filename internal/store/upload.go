package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/samber/do"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader writes into Dir, creating it on first use.
type FileUploader struct {
	Dir string
}

func NewFileUploader(i *do.Injector) (Uploader, error) {
	return &FileUploader{Dir: do.MustInvokeNamed[string](i, "output_dir")}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	path := filepath.Join(u.Dir, params.Name)
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("writing", "file", path)

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return os.WriteFile(path, params.Data, 0o644)
}
