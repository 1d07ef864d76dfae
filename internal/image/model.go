package image

import (
	"fmt"

	"github.com/samber/lo"
)

type Model string

const (
	StableCore Model = "stable-core"
	SD3        Model = "sd3"
	SD3Turbo   Model = "sd3-turbo"
)

var Models = []Model{StableCore, SD3, SD3Turbo}

// Family groups models that share an endpoint and a field set.
type Family struct {
	Name                 string
	Path                 string
	SupportsImageToImage bool
	SupportsStylePreset  bool
}

var (
	CoreFamily = Family{
		Name:                "core",
		Path:                "/v2beta/stable-image/generate/core",
		SupportsStylePreset: true,
	}
	SD3Family = Family{
		Name:                 "sd3",
		Path:                 "/v2beta/stable-image/generate/sd3",
		SupportsImageToImage: true,
	}
)

func (m Model) Family() Family {
	switch m {
	case SD3, SD3Turbo:
		return SD3Family
	default:
		return CoreFamily
	}
}

func (m Model) Valid() bool {
	return lo.Contains(Models, m)
}

func ParseModel(s string) (Model, error) {
	m := Model(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
	return m, nil
}

type Mode string

const (
	TextToImage  Mode = "text-to-image"
	ImageToImage Mode = "image-to-image"
)

var Modes = []Mode{TextToImage, ImageToImage}

var AspectRatios = []string{"1:1", "16:9", "3:2", "5:4", "4:5", "2:3", "9:16", "9:21"}

var OutputFormats = []string{"png", "jpeg", "webp"}

var StylePresets = []string{
	"enhance", "anime", "photographic", "digital-art", "comic-book",
	"fantasy-art", "line-art", "analog-film", "neon-punk", "isometric",
	"low-poly", "origami", "modeling-compound", "cinematic", "3d-model",
	"pixel-art", "tile-texture",
}

// MaxSeed is one less than the full uint32 range; the API rejects 4294967295.
const MaxSeed uint32 = 4294967294
