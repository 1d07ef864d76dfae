package image

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Outcome
	}{
		{"ok", 200, "XYZ", Succeeded([]byte("XYZ"))},
		{"accepted", 202, "", Succeeded([]byte(""))},
		{"moderation", 403, `{"name":"content_moderation"}`, Rejected()},
		{"forbidden with name", 403, `{"name":"invalid_prompt"}`, Failed("invalid_prompt")},
		{"forbidden without body", 403, "", Failed("403 Forbidden")},
		{"bad request", 400, `{"name":"bad_request","errors":["seed: too big"]}`, Failed("400 Bad Request: bad_request")},
		{"server error", 500, "oops", Failed("500 Internal Server Error")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, []byte(tt.body)))
		})
	}
}

func TestClassifyKeepsBytes(t *testing.T) {
	body := []byte{0x00, 0xff, 0x10, '{'}
	out := Classify(200, body)
	assert.True(t, out.OK())
	assert.Equal(t, body, out.Image)
}

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, Succeeded(nil).Err())
	assert.ErrorIs(t, Rejected().Err(), ErrContentModeration)
	assert.ErrorIs(t, Failed("invalid_prompt").Err(), ErrAPI)
	assert.ErrorContains(t, Failed("invalid_prompt").Err(), "invalid_prompt")
	assert.ErrorIs(t, Unreachable(errors.New("connection refused")).Err(), ErrTransport)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "content_moderation", ContentModerationRejected.String())
	assert.Equal(t, "api_error", APIError.String())
	assert.Equal(t, "transport_failure", TransportFailure.String())
}
