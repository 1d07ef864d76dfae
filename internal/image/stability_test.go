package image

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStabilityGeneratorSendsMultipart(t *testing.T) {
	var (
		path, auth, accept string
		form               map[string][]string
		imageType          string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			form = r.MultipartForm.Value
			if files := r.MultipartForm.File["image"]; len(files) == 1 {
				imageType = files[0].Header.Get("Content-Type")
			}
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("XYZ"))
	}))
	defer server.Close()

	g := NewStabilityGenerator(server.Client(), "sk-test", server.URL)
	out := g.Generate(context.Background(), fullRequest(SD3, ImageToImage))

	assert.Equal(t, Succeeded([]byte("XYZ")), out)
	assert.Equal(t, SD3Family.Path, path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "image/*", accept)
	assert.Equal(t, []string{"sd3"}, form["model"])
	assert.Equal(t, []string{"0.4"}, form["strength"])
	assert.NotContains(t, form, "aspect_ratio")
	assert.Equal(t, "image/png", imageType)
}

func TestStabilityGeneratorStableCoreSuccess(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte("XYZ"))
	}))
	defer server.Close()

	g := NewStabilityGenerator(server.Client(), "key", server.URL)
	out := g.Generate(context.Background(), Request{
		Prompt: "a cat", Model: StableCore, AspectRatio: "1:1", OutputFormat: "png",
	})

	require.True(t, out.OK())
	assert.Equal(t, []byte("XYZ"), out.Image)
	assert.Equal(t, CoreFamily.Path, path)
}

func TestStabilityGeneratorErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Outcome
	}{
		{"content moderation", http.StatusForbidden, `{"name":"content_moderation"}`, Rejected()},
		{"other forbidden", http.StatusForbidden, `{"name":"invalid_prompt"}`, Failed("invalid_prompt")},
		{"server error", http.StatusInternalServerError, `{}`, Failed("500 Internal Server Error")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := NewStabilityGenerator(server.Client(), "key", server.URL)
			assert.Equal(t, tt.want, g.Generate(context.Background(), fullRequest(StableCore, "")))
		})
	}
}

func TestStabilityGeneratorConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewStabilityGenerator(nil, "key", url)
	out := g.Generate(context.Background(), fullRequest(SD3Turbo, TextToImage))

	assert.Equal(t, TransportFailure, out.Kind)
	assert.NotEmpty(t, out.Message)
	assert.Nil(t, out.Image)
}

func TestStabilityGeneratorCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewStabilityGenerator(server.Client(), "key", server.URL)
	assert.Equal(t, TransportFailure, g.Generate(ctx, fullRequest(StableCore, "")).Kind)
}
