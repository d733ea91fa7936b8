package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/session"
	"github.com/runnerr0/awrecall/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string            `json:"version"`
	DatabasePath      string            `json:"database_path"`
	DatabaseSizeBytes int64             `json:"database_size_bytes"`
	TotalEvents       int64             `json:"total_events"`
	EmbeddedEvents    int64             `json:"embedded_events"`
	TotalBuckets      int               `json:"total_buckets"`
	Buckets           []bucketCountJSON `json:"buckets"`
	OldestEvent       string            `json:"oldest_event,omitempty"`
	NewestEvent       string            `json:"newest_event,omitempty"`
	RetentionDays     int               `json:"retention_days"`
	TopApps           []appCountJSON    `json:"top_apps"`
	EmbeddingsEnabled bool              `json:"embeddings_enabled"`
	LastUpdated       string            `json:"last_updated"`
}

type bucketCountJSON struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

type appCountJSON struct {
	App   string `json:"app"`
	Count int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}
	return c.executeWithStore(context.Background())
}

// executeWithStore runs status against the loaded deps.
func (c *StatusCommand) executeWithStore(ctx context.Context) error {
	d := &c.deps

	dash := session.LoadDashboard(ctx, d.store, d.now())
	if dash.Err != nil {
		return fmt.Errorf("list buckets: %w", dash.Err)
	}

	stats, err := d.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbSize := getDatabaseSize(d.db, d.dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(dash, stats, dbSize)
	}
	return c.printStatusHuman(dash, stats, dbSize)
}

func (c *StatusCommand) printStatusHuman(dash session.Dashboard, stats *storage.Stats, dbSize int64) error {
	d := &c.deps

	fmt.Println("awrecall Status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", d.dbPath, formatBytes(dbSize))
	fmt.Printf("Events:        %s\n", render.FormatCount(dash.TotalEvents))

	if stats.TotalEvents > 0 {
		pct := float64(stats.EmbeddedEvents) / float64(stats.TotalEvents) * 100
		fmt.Printf("Embedded:      %s (%.1f%%)\n", render.FormatCount(stats.EmbeddedEvents), pct)
		fmt.Printf("Oldest:        %s\n", session.FormatTimestamp(stats.OldestEvent))
		fmt.Printf("Newest:        %s\n", session.FormatTimestamp(stats.NewestEvent))
	} else {
		fmt.Printf("Embedded:      %s\n", render.FormatCount(stats.EmbeddedEvents))
	}

	fmt.Printf("Retention:     %d days\n", d.cfg.Retention.Days)

	if len(dash.Buckets) > 0 {
		fmt.Println()
		fmt.Printf("Buckets (%d):\n", dash.TotalBuckets)
		for _, b := range dash.Buckets {
			fmt.Printf("  %-32s %s\n", b.ID, render.FormatCount(b.Count))
		}
	}

	if len(stats.TopApps) > 0 {
		fmt.Println()
		fmt.Println("Top Apps:")
		for _, a := range stats.TopApps {
			fmt.Printf("  %-20s %s\n", a.App, render.FormatCount(a.Count))
		}
	}

	fmt.Println()
	if d.cfg.Embeddings.Enabled {
		fmt.Printf("Embeddings:    enabled (%s via %s)\n", d.cfg.Embeddings.Model, d.cfg.Embeddings.BaseURL)
	} else {
		fmt.Println("Embeddings:    disabled")
	}
	fmt.Printf("Last updated:  %s\n", dash.LastUpdated.Format("2006-01-02 15:04:05"))

	return nil
}

func (c *StatusCommand) printStatusJSON(dash session.Dashboard, stats *storage.Stats, dbSize int64) error {
	d := &c.deps

	out := statusJSON{
		Version:           c.version,
		DatabasePath:      d.dbPath,
		DatabaseSizeBytes: dbSize,
		TotalEvents:       dash.TotalEvents,
		EmbeddedEvents:    stats.EmbeddedEvents,
		TotalBuckets:      dash.TotalBuckets,
		Buckets:           make([]bucketCountJSON, len(dash.Buckets)),
		OldestEvent:       stats.OldestEvent,
		NewestEvent:       stats.NewestEvent,
		RetentionDays:     d.cfg.Retention.Days,
		TopApps:           make([]appCountJSON, len(stats.TopApps)),
		EmbeddingsEnabled: d.cfg.Embeddings.Enabled,
		LastUpdated:       dash.LastUpdated.UTC().Format("2006-01-02T15:04:05Z"),
	}

	for i, b := range dash.Buckets {
		out.Buckets[i] = bucketCountJSON{ID: b.ID, Count: b.Count}
	}
	for i, a := range stats.TopApps {
		out.TopApps[i] = appCountJSON{App: a.App, Count: a.Count}
	}

	return printJSON(out)
}
