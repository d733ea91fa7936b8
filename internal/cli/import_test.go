package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "buckets": {
    "aw-watcher-window_laptop": {
      "id": "aw-watcher-window_laptop",
      "type": "currentwindow",
      "client": "aw-watcher-window",
      "hostname": "laptop",
      "created": "2025-01-01T08:00:00.000000+00:00",
      "events": [
        {"timestamp": "2025-03-14T09:00:00.000000+00:00", "duration": 300.5, "data": {"app": "Firefox", "title": "Go docs"}},
        {"timestamp": "2025-03-14T09:05:00.000000+00:00", "duration": "60", "data": {"app": "Terminal", "title": "vim main.go"}},
        {"timestamp": "2025-03-14T09:00:00.000000+00:00", "duration": 300.5, "data": {"app": "Firefox", "title": "Go docs"}}
      ]
    },
    "aw-watcher-afk_laptop": {
      "type": "afkstatus",
      "client": "aw-watcher-afk",
      "hostname": "laptop",
      "events": [
        {"timestamp": "2025-03-14T09:00:00Z", "duration": 900, "data": {"status": "not-afk"}}
      ]
    }
  }
}`

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestImport_LoadsBucketsAndEvents(t *testing.T) {
	d := testDeps(t)
	cmd := &ImportCommand{globals: &GlobalFlags{}, deps: d}
	path := writeExport(t, sampleExport)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), path))
	})

	assert.Contains(t, output, "Imported 3 new events from 2 buckets (1 duplicates skipped)")
	assert.Contains(t, output, "aw-watcher-afk_laptop")

	ctx := context.Background()
	ids, err := d.store.BucketIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aw-watcher-window_laptop", "aw-watcher-afk_laptop"}, ids)

	n, err := d.store.CountEvents(ctx, "aw-watcher-window_laptop")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err := d.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalEvents)
}

func TestImport_SecondRunSkipsEverything(t *testing.T) {
	d := testDeps(t)
	cmd := &ImportCommand{globals: &GlobalFlags{}, deps: d}
	path := writeExport(t, sampleExport)

	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), path))
	})
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), path))
	})

	assert.Contains(t, output, "Imported 0 new events from 2 buckets (4 duplicates skipped)")
}

func TestImport_JSON(t *testing.T) {
	cmd := &ImportCommand{globals: &GlobalFlags{JSON: true}, deps: testDeps(t)}
	path := writeExport(t, sampleExport)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), path))
	})

	var out importResultJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 2, out.Buckets)
	assert.Equal(t, 4, out.Read)
	assert.Equal(t, int64(3), out.Imported)
	assert.Equal(t, int64(1), out.Skipped)
	require.Len(t, out.Details, 2)
	// buckets are imported in id order
	assert.Equal(t, "aw-watcher-afk_laptop", out.Details[0].ID)
}

func TestImport_MissingFile(t *testing.T) {
	cmd := &ImportCommand{globals: &GlobalFlags{}, deps: testDeps(t)}
	err := cmd.executeWithStore(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open export")
}

func TestImport_MalformedFile(t *testing.T) {
	cmd := &ImportCommand{globals: &GlobalFlags{}, deps: testDeps(t)}
	err := cmd.executeWithStore(context.Background(), writeExport(t, `{"buckets": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse export")
}

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]interface{}
		wantApp   string
		wantTitle string
	}{
		{"window", map[string]interface{}{"app": "Code", "title": " main.go "}, "Code", "main.go"},
		{"web falls back to url", map[string]interface{}{"url": "https://go.dev"}, "", "https://go.dev"},
		{"afk status", map[string]interface{}{"status": "afk"}, "", "afk"},
		{"non-string value", map[string]interface{}{"app": 42}, "42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := convertEvent("b", awEvent{Timestamp: "2025-03-14T09:00:00Z", Duration: 90.0, Data: tt.data})
			assert.Equal(t, "b", e.BucketID)
			assert.Equal(t, tt.wantApp, e.App)
			assert.Equal(t, tt.wantTitle, e.Title)
			assert.Equal(t, 90.0, e.Duration)
		})
	}
}

func TestImport_SkipsExcludedApps(t *testing.T) {
	d := testDeps(t)
	d.cfg.Import.ExcludeApps = []string{"terminal"}
	cmd := &ImportCommand{globals: &GlobalFlags{}, deps: d}
	path := writeExport(t, sampleExport)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), path))
	})

	assert.Contains(t, output, "Imported 2 new events from 2 buckets (1 duplicates skipped)")
	assert.Contains(t, output, "Excluded 1 events")

	n, err := d.store.CountEvents(context.Background(), "aw-watcher-window_laptop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImport_DefaultExclusions(t *testing.T) {
	body := `{"buckets": {"w": {"type": "currentwindow", "events": [
		{"timestamp": "2025-03-14T09:00:00Z", "duration": 5, "data": {"app": "1Password", "title": "Vault"}},
		{"timestamp": "2025-03-14T09:01:00Z", "duration": 5, "data": {"app": "Firefox", "title": "News"}}
	]}}}`
	cmd := &ImportCommand{globals: &GlobalFlags{JSON: true}, deps: testDeps(t)}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), writeExport(t, body)))
	})

	var out importResultJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 2, out.Read)
	assert.Equal(t, 1, out.Excluded)
	assert.Equal(t, int64(1), out.Imported)
	assert.Equal(t, int64(0), out.Skipped)
}
