package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	if c.OlderThan != "" {
		if _, err := parseDuration(c.OlderThan); err != nil {
			return err
		}
	}

	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}
	return c.executeWithStore(context.Background())
}

// executeWithStore prunes events older than the retention period.
func (c *PruneCommand) executeWithStore(ctx context.Context) error {
	d := &c.deps

	var ttl time.Duration
	if c.OlderThan != "" {
		var err error
		ttl, err = parseDuration(c.OlderThan)
		if err != nil {
			return err
		}
	} else {
		if d.cfg.Retention.Days == 0 {
			fmt.Println("Retention is disabled (retention.days = 0); nothing pruned.")
			return nil
		}
		ttl = time.Duration(d.cfg.Retention.Days) * 24 * time.Hour
	}

	cutoff := d.now().Add(-ttl)
	count, err := d.store.CountOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	jsonOut := c.globals != nil && c.globals.JSON
	result := func(pruned int64) error {
		return printJSON(map[string]interface{}{
			"pruned":     pruned,
			"dry_run":    c.DryRun,
			"older_than": formatDurationHuman(ttl),
			"cutoff":     cutoff.UTC().Format(time.RFC3339),
		})
	}

	if c.DryRun {
		if jsonOut {
			return result(count)
		}
		fmt.Printf("[DRY RUN] Would prune %d events older than %s\n", count, formatDurationHuman(ttl))
		return nil
	}

	if count == 0 {
		if jsonOut {
			return result(0)
		}
		fmt.Printf("No events to prune (older than %s)\n", formatDurationHuman(ttl))
		return nil
	}

	if !c.Force && !jsonOut {
		fmt.Printf("Prune %d events older than %s? Proceed? [y/N] ", count, formatDurationHuman(ttl))
		answer, _ := readLine(d.stdin)
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	pruned, err := d.store.PruneExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	d.log.Info("pruned events", "count", pruned, "cutoff", cutoff)

	if jsonOut {
		return result(pruned)
	}
	fmt.Printf("Pruned %d events older than %s\n", pruned, formatDurationHuman(ttl))
	return nil
}
