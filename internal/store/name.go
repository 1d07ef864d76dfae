package store

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/samber/lo"
)

const timestampLayout = "20060102_150405"

// OutputName is {model}_output_{YYYYMMDD_HHMMSS}.{format} with dashes in the
// model replaced by underscores. Two runs of one model within the same second
// share a name.
func OutputName(model image.Model, t time.Time, format string) string {
	prefix := strings.ReplaceAll(string(model), "-", "_")
	return fmt.Sprintf("%s_output_%s.%s", prefix, t.Format(timestampLayout), format)
}

type Output struct {
	Model  image.Model
	Time   time.Time
	Format string
}

// ParseOutputName reverses OutputName. Times are read in loc.
func ParseOutputName(name string, loc *time.Location) (Output, bool) {
	base := path.Base(name)
	ext := path.Ext(base)
	if ext == "" {
		return Output{}, false
	}
	prefix, stamp, ok := strings.Cut(strings.TrimSuffix(base, ext), "_output_")
	if !ok {
		return Output{}, false
	}
	model := image.Model(strings.ReplaceAll(prefix, "_", "-"))
	if !model.Valid() {
		return Output{}, false
	}
	t, err := time.ParseInLocation(timestampLayout, stamp, loc)
	if err != nil {
		return Output{}, false
	}
	return Output{Model: model, Time: t, Format: strings.TrimPrefix(ext, ".")}, true
}

func ContentType(format string) string {
	return lo.Ternary(format == "", "application/octet-stream", "image/"+format)
}
