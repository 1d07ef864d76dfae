package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	ts := time.Date(2024, 4, 17, 9, 5, 3, 0, time.Local)
	assert.Equal(t, "stable_core_output_20240417_090503.png", OutputName(image.StableCore, ts, "png"))
	assert.Equal(t, "sd3_turbo_output_20240417_090503.webp", OutputName(image.SD3Turbo, ts, "webp"))
	assert.NotEqual(t, OutputName(image.SD3, ts, "png"), OutputName(image.SD3Turbo, ts, "png"))
}

func TestParseOutputName(t *testing.T) {
	ts := time.Date(2024, 4, 17, 9, 5, 3, 0, time.UTC)
	out, ok := ParseOutputName("outputs/"+OutputName(image.SD3Turbo, ts, "jpeg"), time.UTC)
	require.True(t, ok)
	assert.Equal(t, Output{Model: image.SD3Turbo, Time: ts, Format: "jpeg"}, out)

	for _, name := range []string{
		"index.html",
		"feed.xml",
		"sd4_output_20240417_090503.png",
		"sd3_output_yesterday.png",
		"sd3_output_20240417_090503",
	} {
		_, ok := ParseOutputName(name, time.UTC)
		assert.False(t, ok, name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "image/jpeg", ContentType("jpeg"))
	assert.Equal(t, "image/webp", ContentType("webp"))
	assert.Equal(t, "application/octet-stream", ContentType(""))
}

func TestFileUploaderCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	u := &FileUploader{Dir: dir}

	require.NoError(t, u.Upload(context.Background(), UploadParams{Name: "a.png", Data: []byte("XYZ")}))
	require.NoError(t, u.Upload(context.Background(), UploadParams{Name: "a.png", Data: []byte("ABC")}))

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ABC"), data)
}

func TestNoopInvalidator(t *testing.T) {
	assert.NoError(t, NoopInvalidator{}.Invalidate(context.Background(), []string{"/a"}))
}
