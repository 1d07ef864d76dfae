package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmorgan81/stabilitybot/internal/config"
	"github.com/dmorgan81/stabilitybot/internal/handler"
	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/dmorgan81/stabilitybot/internal/inject"
	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type options struct {
	input  handler.Input
	outDir string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var (
		opts      options
		seed      uint64
		strength  float64
		imagePath string
	)
	fs := flag.NewFlagSet("stability", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input.Prompt, "prompt", "", "text prompt (required)")
	fs.Func("model", "model to generate with, repeatable or comma separated: "+strings.Join(lo.Map(image.Models, func(m image.Model, _ int) string { return string(m) }), ", "), func(s string) error {
		for _, m := range strings.Split(s, ",") {
			if m = strings.TrimSpace(m); m != "" {
				opts.input.Models = append(opts.input.Models, m)
			}
		}
		return nil
	})
	fs.StringVar(&opts.input.Mode, "mode", string(image.TextToImage), "sd3 mode: text-to-image or image-to-image")
	fs.StringVar(&opts.input.AspectRatio, "aspect-ratio", "1:1", "aspect ratio: "+strings.Join(image.AspectRatios, ", "))
	fs.StringVar(&opts.input.OutputFormat, "format", "png", "output format: "+strings.Join(image.OutputFormats, ", "))
	fs.StringVar(&opts.input.NegativePrompt, "negative-prompt", "", "negative prompt")
	fs.Uint64Var(&seed, "seed", 0, "seed, 0 for random")
	fs.StringVar(&opts.input.StylePreset, "style-preset", "", "stable-core style preset")
	fs.StringVar(&imagePath, "image", "", "source image for image-to-image")
	fs.Float64Var(&strength, "strength", 0.5, "image-to-image strength (0.0 to 1.0)")
	fs.StringVar(&opts.outDir, "out", "", "output directory (overrides STABILITY_OUTPUT_DIR)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.input.Prompt == "" {
		return options{}, image.ErrEmptyPrompt
	}
	if seed > uint64(image.MaxSeed) {
		return options{}, fmt.Errorf("%w: %d > %d", image.ErrSeedRange, seed, image.MaxSeed)
	}
	opts.input.Seed = uint32(seed)

	if opts.input.Mode == string(image.ImageToImage) {
		opts.input.Strength = &strength
		if imagePath != "" {
			data, err := os.ReadFile(imagePath)
			if err != nil {
				return options{}, fmt.Errorf("reading image: %w", err)
			}
			opts.input.Image = data
			opts.input.ImageName = filepath.Base(imagePath)
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}

	ctx = log.NewContext(ctx, log.New(stderr, log.ParseLevel(cfg.LogLevel)))
	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	out, err := h.Handle(ctx, opts.input)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return lo.Ternary(errors.Is(err, handler.ErrInvalidInput), 2, 1)
	}

	for _, r := range out.Results {
		if r.File == "" {
			fmt.Fprintln(stderr, r.Message)
			continue
		}
		location := lo.Ternary(cfg.UseS3(), "s3://"+cfg.Bucket+"/"+r.File, filepath.Join(cfg.OutputDir, r.File))
		fmt.Fprintf(stdout, "%s: %s\n", r.Model, location)
	}
	return lo.Ternary(out.Failed(), 1, 0)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
