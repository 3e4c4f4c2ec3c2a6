package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/possess/sim"
)

type runOptions struct {
	ticks    uint64
	watch    bool
	realtime bool
	record   string
	out      string
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scene headless for a number of ticks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if ro.record != "" {
				cfg.Record.Controller = ro.record
			}
			if ro.out != "" {
				cfg.Record.Path = ro.out
			}
			if cfg.Record.Controller != "" && cfg.Record.Path == "" {
				cfg.Record.Path = cfg.Record.Controller + ".recording.yaml"
			}
			watchPrefabs := ro.watch || cfg.Sim.Watch

			s, err := sim.New(simOptions(cfg, nil), log)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var pace time.Duration
			if ro.realtime {
				pace = s.TickDuration()
			}

			reloads := make(chan string, 8)
			g, gctx := errgroup.WithContext(ctx)
			watchCtx, stopWatch := context.WithCancel(gctx)
			defer stopWatch()
			if watchPrefabs {
				g.Go(func() error {
					return watch(watchCtx, watchDirs(cfg.Sim.PrefabsDir, s.RecordingDirs()...), reloads, log)
				})
			}
			g.Go(func() error {
				defer stopWatch()
				return runTicks(gctx, s, ro.ticks, pace, reloads, log)
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if err := saveRecording(s, cfg.Record.Path, log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ran %d ticks of %s\n\n", s.Tick(), s.Scene().Name)
			printActors(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&ro.ticks, "ticks", 600, "Number of ticks to run")
	cmd.Flags().BoolVar(&ro.watch, "watch", false, "Reload prefabs and scripts when they change on disk")
	cmd.Flags().BoolVar(&ro.realtime, "realtime", false, "Pace ticks at the configured tick rate")
	cmd.Flags().StringVar(&ro.record, "record", "", "Record this controller's state every tick")
	cmd.Flags().StringVarP(&ro.out, "out", "o", "", "Recording output path")
	return cmd
}

// runTicks steps s until it reaches ticks or ctx is done. Reload requests
// are applied between ticks.
func runTicks(ctx context.Context, s *sim.Sim, ticks uint64, pace time.Duration, reloads <-chan string, log *zap.Logger) error {
	var tick <-chan time.Time
	if pace > 0 {
		t := time.NewTicker(pace)
		defer t.Stop()
		tick = t.C
	}

	for s.Tick() < ticks {
		select {
		case <-ctx.Done():
			return nil
		case path := <-reloads:
			reload(s, path, log)
			continue
		default:
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
		s.Step()
	}
	return nil
}
