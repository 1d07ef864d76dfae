package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/batch"
	"github.com/dmorgan81/stabilitybot/internal/feed"
	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/dmorgan81/stabilitybot/internal/page"
	"github.com/dmorgan81/stabilitybot/internal/prompt"
	"github.com/dmorgan81/stabilitybot/internal/store"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	PageName = "index.html"
	FeedName = "feed.xml"

	ModerationMessage = "Your request was flagged by the content moderation system. Please modify your prompt and try again."
)

var (
	// ErrInvalidInput wraps every error caused by the caller's parameters.
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateModel = errors.New("model requested more than once")
)

type Input struct {
	Prompt         string   `json:"prompt,omitempty"`
	Models         []string `json:"models,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	AspectRatio    string   `json:"aspect_ratio,omitempty"`
	OutputFormat   string   `json:"output_format,omitempty"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Seed           uint32   `json:"seed,omitempty"`
	StylePreset    string   `json:"style_preset,omitempty"`
	Image          []byte   `json:"image,omitempty"`
	ImageName      string   `json:"image_name,omitempty"`
	Strength       *float64 `json:"strength,omitempty"`
}

func (i *Input) applyDefaults() {
	if len(i.Models) == 0 {
		i.Models = []string{string(image.StableCore)}
	}
	i.Mode = lo.Ternary(i.Mode != "", i.Mode, string(image.TextToImage))
	i.AspectRatio = lo.Ternary(i.AspectRatio != "", i.AspectRatio, "1:1")
	i.OutputFormat = lo.Ternary(i.OutputFormat != "", i.OutputFormat, "png")
	if len(i.Image) > 0 && i.ImageName == "" {
		i.ImageName = "image.png"
	}
}

func (i Input) toRequest() image.Request {
	req := image.Request{
		Prompt:         i.Prompt,
		Mode:           image.Mode(i.Mode),
		AspectRatio:    i.AspectRatio,
		OutputFormat:   i.OutputFormat,
		NegativePrompt: i.NegativePrompt,
		Seed:           i.Seed,
		StylePreset:    i.StylePreset,
		Strength:       i.Strength,
	}
	if len(i.Image) > 0 {
		req.Image = &image.SourceImage{Name: i.ImageName, Data: i.Image}
	}
	return req
}

func (i Input) metadata(model image.Model) map[string]string {
	return map[string]string{
		"model":  string(model),
		"prompt": i.Prompt,
		"seed":   strconv.FormatUint(uint64(i.Seed), 10),
		"format": i.OutputFormat,
	}
}

type Result struct {
	Model   string `json:"model"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	File    string `json:"file,omitempty"`
}

type Output struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Seed    uint32   `json:"seed"`
	Results []Result `json:"results"`
}

// Failed reports whether any model did not produce an image.
func (o Output) Failed() bool {
	return lo.SomeBy(o.Results, func(r Result) bool { return r.File == "" })
}

// Describe renders an outcome the way it is shown to a user.
func Describe(model image.Model, outcome image.Outcome) string {
	switch outcome.Kind {
	case image.Success:
		return fmt.Sprintf("Generated with %s", model)
	case image.ContentModerationRejected:
		return ModerationMessage
	case image.APIError:
		return fmt.Sprintf("Error generating image with %s: %s", model, outcome.Message)
	default:
		return fmt.Sprintf("Failed to generate with %s: %s", model, outcome.Message)
	}
}

type Handler struct {
	randomizer  *prompt.Randomizer
	runner      *batch.Runner
	uploader    store.Uploader
	invalidator store.Invalidator
	templator   *page.Templator
	feed        *feed.Generator
	now         func() time.Time
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		randomizer:  do.MustInvoke[*prompt.Randomizer](i),
		runner:      do.MustInvoke[*batch.Runner](i),
		uploader:    do.MustInvoke[store.Uploader](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
		templator:   do.MustInvoke[*page.Templator](i),
		feed:        do.MustInvoke[*feed.Generator](i),
		now:         time.Now,
	}, nil
}

// Handle validates the input, generates one image per model and saves every
// image that came back. Generation failures are reported in the output; only
// invalid input and storage failures are returned as errors.
func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	id := uuid.NewString()
	logger := log.FromContextOrDiscard(ctx).With("id", id)
	ctx = log.NewContext(ctx, logger)
	logger = logger.WithGroup("handler")
	logger.Info("handling invocation", "models", input.Models, "prompt", input.Prompt)

	if input.Prompt == "" {
		model, text, err := h.randomizer.Randomize(ctx)
		if errors.Is(err, prompt.ErrNoPrompts) {
			return Output{}, fmt.Errorf("%w: %w", ErrInvalidInput, image.ErrEmptyPrompt)
		}
		if err != nil {
			return Output{}, err
		}
		input.Prompt = text
		if len(input.Models) == 0 && model != "" {
			input.Models = []string{model}
		}
	}
	input.applyDefaults()

	models := make([]image.Model, 0, len(input.Models))
	base := input.toRequest()
	for _, name := range input.Models {
		model, err := image.ParseModel(name)
		if err != nil {
			return Output{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if lo.Contains(models, model) {
			return Output{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, model, ErrDuplicateModel)
		}
		req := base
		req.Model = model
		if err := req.Validate(); err != nil {
			return Output{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, model, err)
		}
		models = append(models, model)
	}

	results := h.runner.Run(ctx, base, models)

	now := h.now()
	out := Output{ID: id, Prompt: input.Prompt, Seed: input.Seed}
	params := page.Params{
		Prompt:         input.Prompt,
		NegativePrompt: input.NegativePrompt,
		Seed:           strconv.FormatUint(uint64(input.Seed), 10),
	}
	paths := []string{"/" + PageName, "/" + FeedName}

	for _, r := range results {
		result := Result{Model: string(r.Model), Status: r.Outcome.Kind.String()}
		img := page.Image{Model: string(r.Model)}

		if r.Outcome.OK() {
			name := store.OutputName(r.Model, now, input.OutputFormat)
			if err := h.uploader.Upload(ctx, store.UploadParams{
				Name:        name,
				Data:        r.Outcome.Image,
				ContentType: store.ContentType(input.OutputFormat),
				Metadata:    input.metadata(r.Model),
			}); err != nil {
				return Output{}, fmt.Errorf("saving %s: %w", name, err)
			}
			result.File = name
			img.File = name
			paths = append(paths, "/"+name)
		} else {
			result.Message = Describe(r.Model, r.Outcome)
			img.Error = result.Message
			logger.Warn("generation failed", "model", r.Model, "kind", r.Outcome.Kind.String(), "message", r.Outcome.Message)
		}

		out.Results = append(out.Results, result)
		params.Images = append(params.Images, img)
	}

	html, err := h.templator.Template(ctx, params)
	if err != nil {
		return Output{}, fmt.Errorf("rendering page: %w", err)
	}
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        PageName,
		Data:        html,
		ContentType: "text/html",
	}); err != nil {
		return Output{}, fmt.Errorf("saving page: %w", err)
	}

	rss, err := h.feed.Generate(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("generating feed: %w", err)
	}
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        FeedName,
		Data:        rss,
		ContentType: "application/rss+xml",
	}); err != nil {
		return Output{}, fmt.Errorf("saving feed: %w", err)
	}

	if err := h.invalidator.Invalidate(ctx, paths); err != nil {
		return Output{}, err
	}

	return out, nil
}
