package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Entry describes one saved output.
type Entry struct {
	Name    string
	Model   string
	Prompt  string
	Seed    string
	Updated time.Time
}

func (e Entry) title() string {
	parts := lo.Filter([]string{e.Prompt, e.Model, e.Seed}, func(s string, _ int) bool { return s != "" })
	return strings.Join(parts, ":")
}

type Source interface {
	Entries(context.Context) ([]Entry, error)
}

type Generator struct {
	source Source
	site   string
	now    func() time.Time
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return New(do.MustInvoke[Source](i), do.MustInvokeNamed[string](i, "site_url")), nil
}

func New(source Source, site string) *Generator {
	return &Generator{source: source, site: site, now: time.Now}
}

func (g *Generator) link(name string) string {
	if g.site == "" {
		return name
	}
	return strings.TrimRight(g.site, "/") + "/" + name
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed")

	entries, err := g.source.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing outputs: %w", err)
	}

	feed := feeds.Feed{
		Title:       "StabilityBot",
		Description: "Images generated with Stability AI",
		Link:        &feeds.Link{Href: g.link("index.html")},
		Updated:     g.now(),
	}
	for _, e := range entries {
		feed.Add(&feeds.Item{
			Title:   e.title(),
			Link:    &feeds.Link{Href: g.link(e.Name)},
			Id:      e.Name,
			Updated: e.Updated,
			Created: e.Updated,
		})
	}
	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.Before(b.Updated)
	})

	log.Info("generated rss feed", "items", len(feed.Items))
	rss, err := feed.ToRss()
	return []byte(rss), err
}
