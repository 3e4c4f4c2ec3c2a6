package main

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/possess/sim"
	"github.com/milk9111/possess/source/ebitendev"
)

func newPlayCmd(opts *globalOptions) *cobra.Command {
	var (
		watchPrefabs bool
		player       string
		debug        string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open a window and play the scene",
		Long:  "Play the scene with keyboard or gamepad. Tab hands the human controller to the\nnext actor, F2 pins the possessed actor's input on the debug override, F5\ncopies a scene report, Esc opens the possession menu.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			dev := ebitendev.New()
			s, err := sim.New(simOptions(cfg, dev), log)
			if err != nil {
				return err
			}
			defer s.Close()
			if _, ok := s.Controller(player); !ok {
				return errors.New("play: no controller named " + player)
			}
			if _, ok := s.Override(debug); !ok {
				log.Warn("no override controller, F2 disabled", zap.String("controller", debug))
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			reloads := make(chan string, 8)
			g, gctx := errgroup.WithContext(ctx)
			if watchPrefabs || cfg.Sim.Watch {
				g.Go(func() error {
					return watch(gctx, watchDirs(cfg.Sim.PrefabsDir, s.RecordingDirs()...), reloads, log)
				})
			}

			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
			ebiten.SetWindowTitle(cfg.Window.Title)
			ebiten.SetTPS(cfg.Sim.TickRate)

			game := newGame(s, dev, player, debug, cfg.Window.Width, cfg.Window.Height, reloads, log)
			runErr := ebiten.RunGame(game)
			cancel()
			if err := g.Wait(); err != nil {
				return err
			}
			if runErr != nil && !errors.Is(runErr, errQuit) {
				return runErr
			}
			return saveRecording(s, cfg.Record.Path, log)
		},
	}
	cmd.Flags().BoolVar(&watchPrefabs, "watch", false, "Reload prefabs and scripts when they change on disk")
	cmd.Flags().StringVar(&player, "player", "player", "Human controller moved around with Tab and the menu")
	cmd.Flags().StringVar(&debug, "debug", "debug", "Override controller that F2 pins input on")
	return cmd
}
