package image

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/samber/lo"
)

type StabilityGenerator struct {
	Client  *http.Client
	Key     string
	Builder *Builder
}

func NewStabilityGenerator(client *http.Client, key, baseURL string) *StabilityGenerator {
	return &StabilityGenerator{
		Client:  lo.Ternary(client != nil, client, http.DefaultClient),
		Key:     key,
		Builder: NewBuilder(baseURL),
	}
}

func (g *StabilityGenerator) Generate(ctx context.Context, req Request) Outcome {
	return g.Invoke(ctx, g.Builder.Build(req))
}

// Invoke sends one payload and classifies the response. It never retries.
func (g *StabilityGenerator) Invoke(ctx context.Context, payload Payload) Outcome {
	log := log.FromContextOrDiscard(ctx).WithGroup("stability").With("endpoint", payload.Endpoint)
	if model, ok := payload.Get("model"); ok {
		log = log.With("model", model.Value)
	}
	log.Info("generating image via api.stability.ai", "fields", payload.Names())

	body, contentType, err := payload.Encode()
	if err != nil {
		return Unreachable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payload.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Unreachable(err)
	}

	req.Header.Set("Authorization", "Bearer "+g.Key)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Content-Type", contentType)

	resp, err := g.Client.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return Unreachable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reading response failed", "error", err)
		return Unreachable(err)
	}

	outcome := Classify(resp.StatusCode, data)
	log.Info("received response from api.stability.ai",
		"status", resp.StatusCode, "outcome", outcome.Kind.String(), "bytes", len(data))
	return outcome
}
