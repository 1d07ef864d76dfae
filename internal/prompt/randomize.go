package prompt

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/samber/do"
)

var ErrNoPrompts = errors.New("no prompts configured")

// Randomizer picks a prompt from entries of the form "model|prompt" or a bare
// "prompt". The model is empty for bare entries.
type Randomizer struct {
	prompts []string
	rnd     *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "prompts")
	return New(prompts, rand.NewSource(time.Now().UTC().UnixNano())), nil
}

func New(prompts []string, src rand.Source) *Randomizer {
	return &Randomizer{prompts: prompts, rnd: rand.New(src)}
}

func (r *Randomizer) Randomize(ctx context.Context) (string, string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	if len(r.prompts) == 0 {
		return "", "", ErrNoPrompts
	}

	entry := r.prompts[r.rnd.Intn(len(r.prompts))]
	model, prompt, ok := strings.Cut(entry, "|")
	if !ok {
		model, prompt = "", entry
	}
	model, prompt = strings.TrimSpace(model), strings.TrimSpace(prompt)
	log.Info("picked random prompt", "model", model, "prompt", prompt)
	return model, prompt, nil
}
