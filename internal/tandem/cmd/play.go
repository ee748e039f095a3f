// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/archive"
	"laptudirm.com/x/tandem/pkg/config"
	"laptudirm.com/x/tandem/pkg/control"
	"laptudirm.com/x/tandem/pkg/oracle"
	"laptudirm.com/x/tandem/pkg/session"
	"laptudirm.com/x/tandem/pkg/surface/chesscom"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [url]",
		Short: "Play games on chess.com with the configured engine",
		Args:  cobra.MaximumNArgs(1),
		Long: heredoc.Doc(`play opens the given chess.com page, or the configured one,
			and plays the games shown on it with the configured engine.

			With --remote, tandem attaches to an already running browser
			through its DevTools URL and uses the page open in it, so that
			a logged in session can be reused. Otherwise a new browser is
			launched.

			The control channel reports the progress of every game to a
			supervisor. It is either written to stdout line by line, with
			acknowledgements read from stdin (stdio), served over HTTP on
			the given address, or disabled (none).`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				cfg.Surface.URL = args[0]
			}

			flags := cmd.Flags()
			if flags.Changed("remote") {
				cfg.Surface.Remote, _ = flags.GetString("remote")
			}

			if flags.Changed("headless") {
				cfg.Surface.Headless, _ = flags.GetBool("headless")
			}

			if flags.Changed("continuous") {
				cfg.Session.Continuous, _ = flags.GetBool("continuous")
			}

			if flags.Changed("control") {
				cfg.Control.Mode, _ = flags.GetString("control")
			}

			if flags.Changed("engine") {
				cfg.Engine.Cmd, _ = flags.GetString("engine")
				cfg.Engine.Name = ""
			}

			if flags.Changed("depth") {
				cfg.Engine.Depth, _ = flags.GetInt("depth")
				cfg.Engine.MoveTime, cfg.Engine.Nodes = 0, 0
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = play(ctx, cfg)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}

	cmd.Flags().StringP("remote", "r", "", "DevTools URL of a running browser")
	cmd.Flags().Bool("headless", false, "Launch the browser without a window")
	cmd.Flags().Bool("continuous", false, "Keep playing new games")
	cmd.Flags().String("control", "none", "Control channel: stdio, none, or an address")
	cmd.Flags().StringP("engine", "e", "", "Engine command to play with")
	cmd.Flags().IntP("depth", "d", 0, "Search depth of the engine")

	return cmd
}

func play(ctx context.Context, cfg config.Config) error {
	util.StartSpinner("starting engine")
	engine, err := oracle.StartEngine(ctx, cfg.Engine)
	util.PauseSpinner()
	if err != nil {
		return err
	}

	defer engine.Kill()

	util.StartSpinner("opening browser")
	surface, err := chesscom.Open(ctx, cfg.Surface)
	util.PauseSpinner()
	if err != nil {
		return err
	}

	defer surface.Close()

	channel, err := openChannel(ctx, cfg.Control)
	if err != nil {
		return err
	}

	opts := session.Options{
		Observer: surface,
		Executor: surface,
		Oracle:   engine,
		Channel:  channel,
		OnState:  showState,
	}

	if cfg.Archive.Enabled {
		path, err := cfg.ArchivePath()
		if err != nil {
			return err
		}

		store, err := archive.Open(path)
		if err != nil {
			return err
		}

		defer store.Close()
		opts.Archive = store
	}

	controller := session.New(cfg.Session, opts)

	defer util.PauseSpinner()
	return controller.Run(ctx)
}

// openChannel opens the control channel of the given mode.
func openChannel(ctx context.Context, cfg config.Control) (control.Channel, error) {
	switch cfg.Mode {
	case "", "none":
		return control.Discard{}, nil

	case "stdio":
		return control.NewStream(os.Stdin, os.Stdout), nil

	default:
		server := control.NewServer(cfg.Limit)
		go func() {
			if err := server.ListenAndServe(ctx, cfg.Mode); err != nil {
				logrus.WithError(err).Error("control channel stopped")
			}
		}()

		return server, nil
	}
}

func showState(state session.State) {
	switch state {
	case session.AwaitingSession:
		util.StartSpinner("waiting for a game")
	case session.Transitioning:
		util.StartSpinner("starting a new game")
	default:
		util.PauseSpinner()
	}

	logrus.Debugf("session: %s", state)
}
