// Command reasonmesh runs the reasoning tool as an MCP server on stdio.
package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/reasonmesh"
	"github.com/hupe1980/reasonmesh/config"
	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/server"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/strategy/external"
	"github.com/hupe1980/reasonmesh/strategy/external/anthropic"
	"github.com/hupe1980/reasonmesh/strategy/external/openai"
	"github.com/hupe1980/reasonmesh/tool"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "reasonmesh",
		Short:         "Tree-search reasoning tool for assistant hosts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file")

	root.AddCommand(newServeCmd(&cfgFile))
	return root
}

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reasoning tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			// Stdout carries the protocol; all logging goes to stderr.
			logger := logging.NewLogger(&logging.LoggerConfig{
				Level:  logging.ParseLevel(cfg.Logging.Level),
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})

			completer, err := buildCompleter(cfg.Model)
			if err != nil {
				return err
			}

			defaultStrategy := strategy.TypeBeamSearch
			if cfg.Reasoning.DefaultStrategy != "" {
				defaultStrategy, err = strategy.ParseType(cfg.Reasoning.DefaultStrategy)
				if err != nil {
					return fmt.Errorf("config reasoning.defaultStrategy: %w", err)
				}
			}

			mesh := reasonmesh.New(func(o *reasonmesh.Options) {
				o.Completer = completer
				o.DefaultStrategy = defaultStrategy
				o.MaxParallelSimulations = cfg.Reasoning.MaxParallelSimulations
				o.Logger = logger.WithComponent("reasoner")
			})

			registry := tool.NewRegistry()
			rsn := mesh.Reasoner()
			if err := registry.Register(tool.NewReasonerTool(rsn, func(o *tool.ReasonerToolOptions) {
				o.Logger = logger.WithComponent("tool")
			})); err != nil {
				return err
			}
			if err := registry.Register(tool.NewStatsTool(rsn)); err != nil {
				return err
			}

			srv := server.New(registry, func(o *server.Options) {
				o.Name = cfg.Server.Name
				o.Version = cfg.Server.Version
				o.Logger = logger.WithComponent("server")
			})
			return srv.ServeStdio()
		},
	}
}

// buildCompleter wires the configured model provider; no provider leaves the
// external strategy disabled.
func buildCompleter(cfg config.ModelConfig) (external.Completer, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
