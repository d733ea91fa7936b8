package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/runnerr0/awrecall/internal/embedding"
	"github.com/runnerr0/awrecall/internal/render"
)

// Execute implements the go-flags Commander interface for EmbedCommand.
func (c *EmbedCommand) Execute(args []string) error {
	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.executeWithStore(ctx)
}

// executeWithStore embeds pending events in the loaded store.
func (c *EmbedCommand) executeWithStore(ctx context.Context) error {
	d := &c.deps
	build := c.embedder
	if build == nil {
		build = newEmbedder
	}

	emb, err := build(d.cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("embeddings: %w (set embeddings.enabled in config)", err)
	}

	ix := embedding.NewIndexer(d.store, emb, d.cfg.Embeddings.BatchSize, d.log)
	n, runErr := ix.Run(ctx, c.Limit)

	stats, err := d.store.GetStats(ctx)
	if err != nil && runErr == nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if runErr != nil {
		d.log.Error("embedding stopped", "embedded", n, "error", runErr)
		return fmt.Errorf("embedded %d events before failing: %w", n, runErr)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"embedded":        n,
			"model":           emb.Model(),
			"embedded_events": stats.EmbeddedEvents,
			"total_events":    stats.TotalEvents,
		})
	}

	if n == 0 {
		fmt.Println("No events need embedding.")
		return nil
	}
	fmt.Printf("Embedded %s events with %s (%s of %s events embedded)\n",
		render.FormatCount(int64(n)), emb.Model(), render.FormatCount(stats.EmbeddedEvents), render.FormatCount(stats.TotalEvents))
	return nil
}
