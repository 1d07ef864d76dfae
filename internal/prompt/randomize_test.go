package prompt

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomize(t *testing.T) {
	r := New([]string{"sd3-turbo | a kitten in a teacup"}, rand.NewSource(1))
	model, prompt, err := r.Randomize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sd3-turbo", model)
	assert.Equal(t, "a kitten in a teacup", prompt)
}

func TestRandomizeBarePrompt(t *testing.T) {
	r := New([]string{"a kitten"}, rand.NewSource(1))
	model, prompt, err := r.Randomize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, model)
	assert.Equal(t, "a kitten", prompt)
}

func TestRandomizePicksFromList(t *testing.T) {
	prompts := []string{"a", "b", "c"}
	r := New(prompts, rand.NewSource(42))
	for i := 0; i < 20; i++ {
		_, prompt, err := r.Randomize(context.Background())
		require.NoError(t, err)
		assert.Contains(t, prompts, prompt)
	}
}

func TestRandomizeEmpty(t *testing.T) {
	_, _, err := New(nil, rand.NewSource(1)).Randomize(context.Background())
	assert.ErrorIs(t, err, ErrNoPrompts)
}
