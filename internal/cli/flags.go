package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the database path from config"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand shows database totals and a configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	deps    deps
}

// SearchCommand runs one query and prints a page of results.
type SearchCommand struct {
	Mode      string `long:"mode" description:"Search mode: vector | text (default from config)"`
	Threshold string `long:"threshold" description:"Similarity threshold 0-1 for vector search (default from config)"`
	Limit     int    `long:"limit" description:"Maximum results, clamped to 10-1000 (default from config)"`
	Page      int    `long:"page" description:"Page number to show" default:"1"`
	PageSize  int    `long:"page-size" description:"Events per page (default from config)"`
	Bucket    string `long:"bucket" description:"Only events from this bucket id"`
	Since     string `long:"since" description:"Time filter: all_time | today | yesterday | this_week | last_week | this_month"`
	Lang      string `long:"lang" description:"Output language: en | ja"`

	globals *GlobalFlags
	version string
	deps    deps
}

// ChatCommand starts the interactive search console.
type ChatCommand struct {
	Lang string `long:"lang" description:"Console language: en | ja"`

	globals *GlobalFlags
	version string
	deps    deps
}

// ImportCommand loads an ActivityWatch export file.
type ImportCommand struct {
	File string `long:"file" short:"f" description:"Path to an ActivityWatch export JSON file (or pass it as an argument)"`

	globals *GlobalFlags
	version string
	deps    deps
}

// EmbedCommand computes embeddings for events that have none.
type EmbedCommand struct {
	Limit int `long:"limit" description:"Stop after this many events (0 = all)" default:"0"`

	globals  *GlobalFlags
	version  string
	deps     deps
	embedder embedderFunc // injectable for testing; nil means build from config
}

// PruneCommand applies retention pruning to remove old events.
type PruneCommand struct {
	Force     bool   `long:"force" description:"Skip confirmation prompt"`
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
	deps    deps
}

// PurgeCommand deletes ALL awrecall data after a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	deps    deps
}
