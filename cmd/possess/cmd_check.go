package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milk9111/possess/sim"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the scene, its sources and scripts",
		Long:  "Build the scene headless without running a tick. Fails on unknown channels,\nbroken scripts, bad cross references or a contract mismatch in replays.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			s, err := sim.New(simOptions(cfg, nil), log)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scene %s: %d buttons, %d axes, contract %016x\n\n",
				s.Scene().Name, len(s.Contract().Buttons()), len(s.Contract().Axes()), s.Contract().Fingerprint())
			printControllers(out, s)
			fmt.Fprintln(out)
			printActors(out, s)
			fmt.Fprintf(out, "\n%d scheduled hand-offs\n", len(s.Scene().HandOffs))
			return nil
		},
	}
}
