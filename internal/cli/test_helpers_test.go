package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/runnerr0/awrecall/internal/config"
	"github.com/runnerr0/awrecall/internal/storage"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testDeps returns deps over a fresh in-memory store with default config,
// a discarded log and a fixed clock.
func testDeps(t *testing.T) deps {
	t.Helper()
	store, db, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		db.Close()
	})

	return deps{
		cfg:    config.DefaultConfig(),
		store:  store,
		db:     db,
		dbPath: storage.MemoryPath,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdin:  strings.NewReader(""),
		now:    func() time.Time { return testNow },
	}
}

// seedEvents adds n events to bucket, one minute apart, ending at testNow.
func seedEvents(t *testing.T, d deps, bucket, app string, n int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, d.store.UpsertBucket(ctx, &storage.Bucket{ID: bucket, Type: "currentwindow"}))
	for i := 0; i < n; i++ {
		ev := &storage.Event{
			BucketID:  bucket,
			Timestamp: testNow.Add(-time.Duration(i+1) * time.Minute).Format(time.RFC3339),
			Duration:  120,
			App:       app,
			Title:     fmt.Sprintf("%s window %d", app, i),
		}
		require.NoError(t, d.store.AddEvent(ctx, ev))
	}
}
