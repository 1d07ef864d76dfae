package inject

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/stabilitybot/internal/batch"
	appconfig "github.com/dmorgan81/stabilitybot/internal/config"
	"github.com/dmorgan81/stabilitybot/internal/feed"
	"github.com/dmorgan81/stabilitybot/internal/handler"
	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/dmorgan81/stabilitybot/internal/page"
	"github.com/dmorgan81/stabilitybot/internal/param"
	"github.com/dmorgan81/stabilitybot/internal/prompt"
	"github.com/dmorgan81/stabilitybot/internal/store"
	"github.com/samber/do"
)

// Setup registers every provider. Storage is S3 when a bucket is set and the
// local directory otherwise. A parameter is read from SSM when its name is a
// path or S3 storage is in use, and from the environment otherwise.
func Setup(ctx context.Context, cfg *appconfig.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.ProvideNamedValue[string](injector, "output_dir", cfg.OutputDir)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)
	do.ProvideNamedValue[string](injector, "site_url", cfg.SiteURL)

	do.ProvideNamed[param.Fetcher](injector, "parameter_store", param.NewParameterStoreFetcher)
	do.ProvideNamedValue[param.Fetcher](injector, "env", param.EnvFetcher{})
	fetcherFor := func(i *do.Injector, name string) (param.Fetcher, error) {
		if strings.HasPrefix(name, "/") || cfg.UseS3() {
			return do.InvokeNamed[param.Fetcher](i, "parameter_store")
		}
		return do.InvokeNamed[param.Fetcher](i, "env")
	}
	do.ProvideNamed[string](injector, "stability_key", func(i *do.Injector) (string, error) {
		if cfg.APIKeyParam == "" {
			return cfg.APIKey, nil
		}
		fetcher, err := fetcherFor(i, cfg.APIKeyParam)
		if err != nil {
			return "", err
		}
		return fetcher.Fetch(ctx, cfg.APIKeyParam)
	})
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		if cfg.PromptsParam == "" {
			return nil, nil
		}
		fetcher, err := fetcherFor(i, cfg.PromptsParam)
		if err != nil {
			return nil, err
		}
		return fetcher.FetchAll(ctx, cfg.PromptsParam)
	})

	do.Provide[image.Generator](injector, func(i *do.Injector) (image.Generator, error) {
		key, err := do.InvokeNamed[string](i, "stability_key")
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, appconfig.ErrMissingAPIKey
		}
		return image.NewStabilityGenerator(do.MustInvoke[*http.Client](i), key, cfg.BaseURL), nil
	})
	do.Provide[*batch.Runner](injector, batch.NewRunner)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*page.Templator](injector, func(i *do.Injector) (*page.Templator, error) {
		return &page.Templator{}, nil
	})
	do.Provide[*feed.Generator](injector, feed.NewGenerator)

	if cfg.UseS3() {
		do.Provide[store.Uploader](injector, store.NewS3Uploader)
		do.Provide[feed.Source](injector, feed.NewS3Source)
	} else {
		do.Provide[store.Uploader](injector, store.NewFileUploader)
		do.Provide[feed.Source](injector, feed.NewDirSource)
	}
	if cfg.Distribution != "" {
		do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)
	} else {
		do.ProvideValue[store.Invalidator](injector, store.NoopInvalidator{})
	}

	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
