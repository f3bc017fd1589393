// Package cli holds the subcommands of the stoxy client binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/di"
	"github.com/aristath/stoxy/pkg/logger"
)

// Commands is the list of subcommands registered by the binary
var Commands = []subcommands.Command{
	&serveCmd{},
	&exportCmd{},
	&importCmd{},
	&statusCmd{},
	&calcCmd{},
	&backupCmd{},
}

// session is a wired client for one command run
type session struct {
	cfg       *config.Config
	log       zerolog.Logger
	container *di.Container
}

// open loads the configuration and wires the client. Logs go to stderr so
// stdout stays clean for command output.
func open(ctx context.Context, pretty bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: pretty || cfg.DevMode,
		Output: os.Stderr,
	})
	logger.SetGlobalLogger(log)

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, container: container}, nil
}

// close closes the local database without the unload flush. One-shot
// commands that change state flush explicitly.
func (s *session) close() {
	if err := s.container.LocalDB.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close local store")
	}
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal, or prints it raw when it
// cannot be rendered
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
