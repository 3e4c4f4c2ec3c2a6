// possess runs scenes where actors are driven through swappable controllers.
//
// Usage:
//
//	possess play  [--config possess.toml] [--watch] [--player player]
//	possess run   [--ticks 600] [--watch] [--record intro --out intro.yaml]
//	possess check [--scene scene.yaml]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/possess/config"
	"github.com/milk9111/possess/logging"
	"github.com/milk9111/possess/prefabs"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	configPath string
	prefabsDir string
	scene      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "possess",
		Short: "Run scenes whose actors are driven through swappable controllers",
		Long: "possess loads a scene of actors and controllers from yaml prefabs and runs it.\n" +
			"Humans, AI, scripts, timelines and replays all drive actors through the same\n" +
			"controller interface, and can hand actors to each other between ticks.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a toml config file")
	root.PersistentFlags().StringVar(&opts.prefabsDir, "prefabs", "", "Directory with prefab overrides (default from config)")
	root.PersistentFlags().StringVar(&opts.scene, "scene", "", "Scene prefab to load (default from config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override")

	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the logger.
func (o *globalOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, nil, err
		}
	}
	if o.prefabsDir != "" {
		cfg.Sim.PrefabsDir = o.prefabsDir
	}
	if o.scene != "" {
		cfg.Sim.Scene = o.scene
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	prefabs.SetDir(cfg.Sim.PrefabsDir)

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
