package embedding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/runnerr0/awrecall/internal/storage"
)

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// EventText is the text an event is embedded from.
func EventText(app, title string) string {
	app = strings.TrimSpace(app)
	title = strings.TrimSpace(title)
	switch {
	case app == "":
		return title
	case title == "":
		return app
	}
	return app + " - " + title
}

// Indexer fills in embeddings for stored events that lack one.
type Indexer struct {
	store     storage.Store
	embedder  Embedder
	batchSize int
	log       *slog.Logger
}

// NewIndexer creates an indexer. A nil logger discards output.
func NewIndexer(store storage.Store, embedder Embedder, batchSize int, log *slog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 16
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Indexer{store: store, embedder: embedder, batchSize: batchSize, log: log}
}

// Run embeds pending events batch by batch until none remain, limit
// events are done (limit <= 0 means no limit) or ctx is cancelled.
func (ix *Indexer) Run(ctx context.Context, limit int) (int, error) {
	done := 0
	for limit <= 0 || done < limit {
		n := ix.batchSize
		if limit > 0 && limit-done < n {
			n = limit - done
		}

		events, err := ix.store.EventsMissingEmbedding(ctx, n)
		if err != nil {
			return done, err
		}
		if len(events) == 0 {
			break
		}

		texts := make([]string, len(events))
		for i, e := range events {
			texts[i] = EventText(e.App, e.Title)
		}
		vecs, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return done, err
		}

		for i, e := range events {
			if err := ix.store.SetEmbedding(ctx, e.ID, ix.embedder.Model(), vecs[i]); err != nil {
				return done, fmt.Errorf("event %d: %w", e.ID, err)
			}
		}
		done += len(events)
		ix.log.Debug("embedded batch", "events", len(events), "total", done)
	}
	return done, nil
}
