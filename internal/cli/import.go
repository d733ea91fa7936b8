package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/session"
	"github.com/runnerr0/awrecall/internal/storage"
)

// awExport is the layout of an ActivityWatch bucket export.
type awExport struct {
	Buckets map[string]awBucket `json:"buckets"`
}

type awBucket struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Client   string    `json:"client"`
	Hostname string    `json:"hostname"`
	Created  string    `json:"created"`
	Events   []awEvent `json:"events"`
}

type awEvent struct {
	Timestamp string                 `json:"timestamp"`
	Duration  interface{}            `json:"duration"`
	Data      map[string]interface{} `json:"data"`
}

type importResultJSON struct {
	File     string            `json:"file"`
	Buckets  int               `json:"buckets"`
	Read     int               `json:"events_read"`
	Imported int64             `json:"events_imported"`
	Skipped  int64             `json:"duplicates_skipped"`
	Excluded int               `json:"excluded"`
	Details  []bucketCountJSON `json:"imported_per_bucket"`
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	path := c.File
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("import requires an export file (--file or argument)")
	}

	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}
	return c.executeWithStore(context.Background(), path)
}

// executeWithStore imports the export at path into the loaded store.
func (c *ImportCommand) executeWithStore(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var export awExport
	if err := dec.Decode(&export); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	ids := make([]string, 0, len(export.Buckets))
	for id := range export.Buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := importResultJSON{File: path, Buckets: len(ids), Details: []bucketCountJSON{}}
	for _, key := range ids {
		b := export.Buckets[key]
		if b.ID == "" {
			b.ID = key
		}

		bucket := &storage.Bucket{ID: b.ID, Type: b.Type, Client: b.Client, Hostname: b.Hostname}
		if t, err := time.Parse(time.RFC3339Nano, b.Created); err == nil {
			bucket.Created = t
		}
		if err := c.deps.store.UpsertBucket(ctx, bucket); err != nil {
			return fmt.Errorf("bucket %s: %w", b.ID, err)
		}

		events := make([]storage.Event, 0, len(b.Events))
		excluded := 0
		for _, e := range b.Events {
			ev := convertEvent(b.ID, e)
			if c.deps.cfg.Import.Excludes(ev.App) {
				excluded++
				continue
			}
			events = append(events, ev)
		}
		n, err := c.deps.store.ImportEvents(ctx, events)
		if err != nil {
			return fmt.Errorf("bucket %s: %w", b.ID, err)
		}

		c.deps.log.Debug("imported bucket", "bucket", b.ID, "read", len(b.Events), "new", n, "excluded", excluded)
		out.Read += len(b.Events)
		out.Excluded += excluded
		out.Imported += n
		out.Details = append(out.Details, bucketCountJSON{ID: b.ID, Count: n})
	}
	out.Skipped = int64(out.Read-out.Excluded) - out.Imported

	if c.globals != nil && c.globals.JSON {
		return printJSON(out)
	}

	fmt.Printf("Imported %s new events from %d buckets (%s duplicates skipped)\n",
		render.FormatCount(out.Imported), out.Buckets, render.FormatCount(out.Skipped))
	if out.Excluded > 0 {
		fmt.Printf("Excluded %s events from apps on the import.exclude_apps list\n", render.FormatCount(int64(out.Excluded)))
	}
	for _, d := range out.Details {
		fmt.Printf("  %-32s %s\n", d.ID, render.FormatCount(d.Count))
	}
	return nil
}

// convertEvent maps an ActivityWatch event onto a stored event. Window
// watchers carry app and title; web watchers carry url and title; the AFK
// watcher carries a status, which becomes the title.
func convertEvent(bucketID string, e awEvent) storage.Event {
	app := dataString(e.Data, "app")
	title := dataString(e.Data, "title")
	if title == "" {
		title = dataString(e.Data, "url")
	}
	if app == "" && title == "" {
		title = dataString(e.Data, "status")
	}
	return storage.Event{
		BucketID:  bucketID,
		Timestamp: e.Timestamp,
		Duration:  session.ParseDuration(e.Duration),
		App:       app,
		Title:     title,
	}
}

func dataString(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}
