package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/session"
	"github.com/runnerr0/awrecall/internal/tui"
)

// Execute implements the go-flags Commander interface for ChatCommand.
func (c *ChatCommand) Execute(args []string) error {
	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model, err := c.newModel(ctx, newSearcher(&c.deps))
	if err != nil {
		return err
	}
	return tui.Run(ctx, model)
}

// maxChatSessions bounds how many sessions /new keeps resumable.
const maxChatSessions = 16

// newModel builds the console around a fresh session backed by s.
func (c *ChatCommand) newModel(ctx context.Context, s session.Searcher) (tui.Model, error) {
	r := render.New(nil)
	if err := checkLocale(r.Translator(), c.Lang); err != nil {
		return tui.Model{}, err
	}

	mgr, err := session.NewManager(maxChatSessions, func() *session.Controller {
		return newController(&c.deps, s, r)
	})
	if err != nil {
		return tui.Model{}, err
	}
	id, ctrl := mgr.Create()
	if c.Lang != "" {
		if _, err := ctrl.UpdateConfig(session.ConfigUpdate{Locale: &c.Lang}); err != nil {
			return tui.Model{}, err
		}
	}
	c.deps.log.Debug("chat session started", "session", id, "locale", ctrl.Snapshot().Config.Locale)
	return tui.New(ctx, ctrl, r, c.deps.store).WithSessions(mgr, id), nil
}
