package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrEmptyPrompt        = errors.New("prompt is required")
	ErrUnknownModel       = errors.New("unknown model")
	ErrUnknownMode        = errors.New("unknown mode")
	ErrUnknownAspectRatio = errors.New("unknown aspect ratio")
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrUnknownStylePreset = errors.New("unknown style preset")
	ErrSeedRange          = errors.New("seed out of range")
	ErrStrengthRange      = errors.New("strength must be between 0.0 and 1.0")
	ErrMissingImage       = errors.New("image-to-image requires a source image")
)

type SourceImage struct {
	Name string
	Data []byte
}

type Request struct {
	Prompt         string
	Model          Model
	Mode           Mode
	AspectRatio    string
	OutputFormat   string
	NegativePrompt string
	Seed           uint32
	StylePreset    string
	Image          *SourceImage
	Strength       *float64
}

// Validate checks the bundle against the fields the selected model family
// understands. Values a family ignores are not checked.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if !r.Model.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownModel, r.Model)
	}
	if !lo.Contains(OutputFormats, r.OutputFormat) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.OutputFormat)
	}
	if r.Seed > MaxSeed {
		return fmt.Errorf("%w: %d > %d", ErrSeedRange, r.Seed, MaxSeed)
	}

	family := r.Model.Family()
	imageToImage := false
	if family.SupportsImageToImage {
		if !lo.Contains(Modes, r.Mode) {
			return fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
		}
		imageToImage = r.Mode == ImageToImage
	}

	if imageToImage {
		if r.Image == nil || len(r.Image.Data) == 0 {
			return ErrMissingImage
		}
		if r.Strength != nil && (*r.Strength < 0 || *r.Strength > 1) {
			return fmt.Errorf("%w: %v", ErrStrengthRange, *r.Strength)
		}
	} else if !lo.Contains(AspectRatios, r.AspectRatio) {
		return fmt.Errorf("%w: %q", ErrUnknownAspectRatio, r.AspectRatio)
	}

	if family.SupportsStylePreset && r.StylePreset != "" && !lo.Contains(StylePresets, r.StylePreset) {
		return fmt.Errorf("%w: %q", ErrUnknownStylePreset, r.StylePreset)
	}
	return nil
}

type Generator interface {
	Generate(context.Context, Request) Outcome
}
