package cli

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/awrecall/internal/config"
	"github.com/runnerr0/awrecall/internal/embedding"
	"github.com/runnerr0/awrecall/internal/i18n"
	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/search"
	"github.com/runnerr0/awrecall/internal/session"
	"github.com/runnerr0/awrecall/internal/storage"
)

// deps holds what a command needs at run time. Tests fill it in directly;
// anything left nil is opened from config by load.
type deps struct {
	cfg    *config.Config
	store  *storage.SQLiteStore
	db     *sql.DB
	dbPath string
	log    *slog.Logger
	stdin  io.Reader
	now    func() time.Time
}

// load resolves config, logger and store. The returned func releases
// whatever load opened.
func (d *deps) load(g *GlobalFlags) (func(), error) {
	if g == nil {
		g = &GlobalFlags{}
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if d.cfg == nil {
		cfg, err := loadConfig(g)
		if err != nil {
			return cleanup, err
		}
		d.cfg = cfg
	}

	if d.log == nil {
		log, closeLog, err := newLogger(d.cfg.Logging, g.Verbose)
		if err != nil {
			return cleanup, err
		}
		d.log = log
		closers = append(closers, closeLog)
	}

	if d.store == nil {
		path := g.DBPath
		if path == "" {
			p, err := d.cfg.DBPath()
			if err != nil {
				cleanup()
				return func() {}, fmt.Errorf("resolve db path: %w", err)
			}
			path = p
		}
		store, db, err := storage.Open(path)
		if err != nil {
			cleanup()
			return func() {}, err
		}
		d.store, d.db, d.dbPath = store, db, path
		closers = append(closers, func() { store.Close() }, func() { db.Close() })
	}

	if d.stdin == nil {
		d.stdin = os.Stdin
	}
	if d.now == nil {
		d.now = time.Now
	}
	return cleanup, nil
}

// loadConfig reads --config when given, otherwise the default location,
// creating it with defaults on first run.
func loadConfig(g *GlobalFlags) (*config.Config, error) {
	if g.Config != "" {
		return config.Load(g.Config)
	}
	return config.LoadOrCreate()
}

// newLogger builds a text slog logger writing to the configured file or
// stderr. --verbose forces debug level.
func newLogger(cfg config.LoggingConfig, verbose bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// embedderFunc builds the embedding client; EmbedCommand takes one for tests.
type embedderFunc func(cfg config.EmbeddingsConfig) (embedding.Embedder, error)

func newEmbedder(cfg config.EmbeddingsConfig) (embedding.Embedder, error) {
	client, err := embedding.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newSearcher wires the search client over the store, with an embedder
// when embeddings are enabled.
func newSearcher(d *deps) *search.Client {
	var emb search.Embedder
	if d.cfg.Embeddings.Enabled {
		client, err := embedding.NewClient(d.cfg.Embeddings)
		if err != nil {
			d.log.Warn("embeddings unavailable, vector search will use text", "error", err)
		} else {
			emb = client
		}
	}
	return search.NewClient(d.store, emb, search.WithLogger(d.log), search.WithClock(d.now))
}

// sessionConfig maps the config file section onto a session config.
func sessionConfig(sc config.SessionConfig) session.Config {
	return session.Config{
		SearchMode:          session.Mode(sc.SearchMode),
		SimilarityThreshold: sc.SimilarityThreshold,
		MaxResults:          sc.MaxResults,
		TimeFilter:          sc.TimeFilter,
		BucketFilter:        sc.BucketFilter,
		Locale:              sc.Locale,
	}.Normalized()
}

// newController creates a session controller rendering replies with r.
func newController(d *deps, s session.Searcher, r *render.Renderer) *session.Controller {
	return session.NewController(s, session.Options{
		Config:     sessionConfig(d.cfg.Session),
		PageSize:   d.cfg.Session.PageSize,
		Translator: r.Translator(),
		Formatter:  r,
		Logger:     d.log,
		Now:        d.now,
	})
}

// checkLocale rejects a --lang value with no string table.
func checkLocale(tr *i18n.Translator, lang string) error {
	if lang != "" && !tr.Has(lang) {
		return fmt.Errorf("unsupported language %q (available: %s)", lang, strings.Join(tr.Locales(), ", "))
	}
	return nil
}

// readLine reads one trimmed line from r.
func readLine(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// getDatabaseSize returns the database file size in bytes. For in-memory
// databases it falls back to page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if dbPath != "" && dbPath != storage.MemoryPath {
		if info, err := os.Stat(dbPath); err == nil {
			return info.Size()
		}
	}
	if db == nil {
		return 0
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}
