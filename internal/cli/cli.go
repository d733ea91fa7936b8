package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status *StatusCommand
	Search *SearchCommand
	Chat   *ChatCommand
	Import *ImportCommand
	Embed  *EmbedCommand
	Prune  *PruneCommand
	Purge  *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "awrecall"
	parser.LongDescription = "Chat-style search over your local ActivityWatch history."

	cmds := &commands{
		Status: &StatusCommand{globals: &globals, version: version},
		Search: &SearchCommand{globals: &globals, version: version},
		Chat:   &ChatCommand{globals: &globals, version: version},
		Import: &ImportCommand{globals: &globals, version: version},
		Embed:  &EmbedCommand{globals: &globals, version: version},
		Prune:  &PruneCommand{globals: &globals, version: version},
		Purge:  &PurgeCommand{globals: &globals, version: version},
	}

	registry := []struct {
		name, short, long string
		data              interface{}
	}{
		{"status", "Show database statistics", "Show event and bucket totals, top apps and configuration summary.", cmds.Status},
		{"search", "Search activity events", "Run one query in vector or text mode and print a page of results with statistics.", cmds.Search},
		{"chat", "Start the interactive search console", "Start an interactive chat-style console for searching activity history.", cmds.Chat},
		{"import", "Import an ActivityWatch export", "Import buckets and events from an ActivityWatch export JSON file.", cmds.Import},
		{"embed", "Compute missing embeddings", "Compute embeddings for events that have none, using the configured OpenAI-compatible endpoint.", cmds.Embed},
		{"prune", "Apply retention pruning", "Delete events older than the retention period.", cmds.Prune},
		{"purge", "Delete ALL awrecall data", "Delete every bucket, event and embedding. Asks for a typed confirmation.", cmds.Purge},
	}
	for _, c := range registry {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("register %s command: %v", c.name, err))
		}
	}

	return parser, &globals, cmds
}

// Run is the main entry point for the awrecall CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags insists on a subcommand; --version stands alone.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("awrecall %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}
