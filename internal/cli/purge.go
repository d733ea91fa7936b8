package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}
	return c.executeWithStore(context.Background())
}

// executeWithStore deletes every bucket and event from the loaded store.
func (c *PurgeCommand) executeWithStore(ctx context.Context) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	d := &c.deps

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL awrecall data.")
		fmt.Println("  - All buckets")
		fmt.Println("  - All activity events")
		fmt.Println("  - All embeddings")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		input, ok := readLine(d.stdin)
		if !ok {
			return fmt.Errorf("aborted: no input received")
		}
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	if err := d.store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	d.log.Warn("purged all data")

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"purged":  true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Purged all data. awrecall is empty.")
	return nil
}
