package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurge_RequiresAll(t *testing.T) {
	d := testDeps(t)
	seedEvents(t, d, "aw-watcher-window_host", "Firefox", 2)
	cmd := &PurgeCommand{Force: true, globals: &GlobalFlags{}, deps: d}

	err := cmd.executeWithStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all flag")
	assert.Equal(t, int64(2), totalEvents(t, d))
}

func TestPurge_Force(t *testing.T) {
	d := testDeps(t)
	seedEvents(t, d, "aw-watcher-window_host", "Firefox", 3)
	cmd := &PurgeCommand{All: true, Force: true, globals: &GlobalFlags{}, deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background()))
	})

	assert.Contains(t, output, "Purged all data. awrecall is empty.")
	assert.NotContains(t, output, "WARNING")
	assert.Equal(t, int64(0), totalEvents(t, d))

	ids, err := d.store.BucketIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPurge_ConfirmationTyped(t *testing.T) {
	d := testDeps(t)
	d.stdin = strings.NewReader("PURGE\n")
	seedEvents(t, d, "aw-watcher-window_host", "Firefox", 3)
	cmd := &PurgeCommand{All: true, globals: &GlobalFlags{}, deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background()))
	})

	assert.Contains(t, output, "WARNING")
	assert.Contains(t, output, `Type "PURGE" to confirm`)
	assert.Equal(t, int64(0), totalEvents(t, d))
}

func TestPurge_WrongConfirmation(t *testing.T) {
	d := testDeps(t)
	d.stdin = strings.NewReader("purge\n")
	seedEvents(t, d, "aw-watcher-window_host", "Firefox", 3)
	cmd := &PurgeCommand{All: true, globals: &GlobalFlags{}, deps: d}

	var err error
	captureOutput(t, func() {
		err = cmd.executeWithStore(context.Background())
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not match")
	assert.Equal(t, int64(3), totalEvents(t, d))
}

func TestPurge_NoInput(t *testing.T) {
	d := testDeps(t)
	cmd := &PurgeCommand{All: true, globals: &GlobalFlags{}, deps: d}

	var err error
	captureOutput(t, func() {
		err = cmd.executeWithStore(context.Background())
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input")
}

func TestPurge_JSON(t *testing.T) {
	d := testDeps(t)
	seedEvents(t, d, "aw-watcher-window_host", "Firefox", 1)
	cmd := &PurgeCommand{All: true, Force: true, globals: &GlobalFlags{JSON: true}, deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background()))
	})

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, true, out["purged"])
}
