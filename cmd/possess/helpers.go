package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/possess/config"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
	"github.com/milk9111/possess/sim"
	"github.com/milk9111/possess/source"
)

func simOptions(cfg *config.Config, dev source.Device) sim.Options {
	return sim.Options{
		Scene:         cfg.Sim.Scene,
		TickRate:      cfg.Sim.TickRate,
		ResetOnAttach: cfg.Sim.ResetOnAttach,
		Device:        dev,
		Record:        cfg.Record.Controller,
	}
}

// watchDirs returns the prefab directories and any extra directories that
// exist on disk.
func watchDirs(root string, extra ...string) []string {
	var dirs []string
	candidates := append([]string{root, filepath.Join(root, "scripts")}, extra...)
	for _, dir := range candidates {
		dir = filepath.Clean(dir)
		if slices.Contains(dirs, dir) {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// watch forwards changed prefab and recording files to reloads until ctx is
// done.
func watch(ctx context.Context, dirs []string, reloads chan<- string, log *zap.Logger) error {
	if len(dirs) == 0 {
		log.Warn("nothing to watch, prefabs are embedded")
		<-ctx.Done()
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return fmt.Errorf("watch %v: %w", dirs, err)
	}
	defer w.Close()

	log.Info("watching prefabs", zap.Strings("dirs", dirs))
	return w.Run(ctx, func(path string) {
		select {
		case reloads <- path:
		case <-ctx.Done():
		}
	})
}

func reload(s *sim.Sim, path string, log *zap.Logger) {
	if err := s.Reload(path); err != nil {
		log.Error("reload failed", zap.String("file", path), zap.Error(err))
	}
}

func saveRecording(s *sim.Sim, path string, log *zap.Logger) error {
	rec, ok := s.Recording()
	if !ok {
		return nil
	}
	if err := rec.SaveFile(path); err != nil {
		return err
	}
	log.Info("recording saved",
		zap.String("id", rec.ID),
		zap.String("path", path),
		zap.Int("frames", len(rec.Frames)),
	)
	return nil
}

func printActors(out io.Writer, s *sim.Sim) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Actor\tController\tX\tY\n")
	fmt.Fprintf(w, "-----\t----------\t-\t-\n")
	for _, v := range s.Actors() {
		ctrl := v.Controller
		if ctrl == "" {
			ctrl = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\n", v.Name, ctrl, v.Position.X, v.Position.Y)
	}
	w.Flush()
}

func printControllers(out io.Writer, s *sim.Sim) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Controller\tHandle\tSource\tActor\tState\n")
	fmt.Fprintf(w, "----------\t------\t------\t-----\t-----\n")
	for _, v := range s.Controllers() {
		actor := v.Actor
		if actor == "" {
			actor = "-"
		}
		state := "-"
		if c, ok := s.Controller(v.Name); ok {
			state = describeState(s.Contract(), c.State().Snapshot())
		}
		src := v.Source
		if v.Finished {
			src += " (done)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Name, v.Handle, src, actor, state)
	}
	w.Flush()
}

// describeState lists pressed buttons and non-neutral axes by channel name.
func describeState(c *input.Contract, snap input.Snapshot) string {
	var parts []string
	for i, pressed := range snap.Buttons {
		if pressed {
			parts = append(parts, c.ButtonName(input.ButtonID(i)))
		}
	}
	for i, v := range snap.Axes {
		if v != (cp.Vector{}) {
			parts = append(parts, fmt.Sprintf("%s=(%.2f,%.2f)", c.AxisName(input.AxisID(i)), v.X, v.Y))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
