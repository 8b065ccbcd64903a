package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bastiangx/gopostfix/internal/cli"
	"github.com/bastiangx/gopostfix/internal/logger"
	"github.com/bastiangx/gopostfix/pkg/config"
	"github.com/bastiangx/gopostfix/pkg/lsp"
	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/bastiangx/gopostfix/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve completions as msgpack over stdin/stdout (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newLSPCommand(opts *rootOptions) *cobra.Command {
	var (
		ws   bool
		addr string
	)
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Serve completions over the Language Server Protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd.Context(), opts, ws, addr)
		},
	}
	cmd.Flags().BoolVar(&ws, "ws", false, "Serve LSP over WebSocket instead of stdio")
	cmd.Flags().StringVar(&addr, "addr", "", "WebSocket listen address (default from config)")
	return cmd
}

func newCLICommand(opts *rootOptions) *cobra.Command {
	defaults := config.DefaultConfig().CLI
	var (
		limit       int
		showSnippet bool
	)
	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Interactive prompt for testing templates -- useful for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(opts)
			if !cmd.Flags().Changed("limit") {
				limit = cfg.CLI.DefaultLimit
			}
			if !cmd.Flags().Changed("snippet") {
				showSnippet = cfg.CLI.ShowSnippet
			}
			log.Debug("Input info:", "limit", limit, "snippet", showSnippet)

			gen := buildGenerator(cfg)
			h := cli.NewInputHandler(gen, limit, cfg.Server.MaxLineLength, showSnippet)
			return runUntilDone(cmd.Context(), h.Start)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaults.DefaultLimit, "Number of candidates to print")
	cmd.Flags().BoolVar(&showSnippet, "snippet", defaults.ShowSnippet, "Print the raw snippet text of each candidate")
	return cmd
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the templates in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path := loadConfig(opts)
			popts, errs := postfix.OptionsFromConfig(cfg)
			out := cmd.OutOrStdout()

			if path == "" {
				path = "builtin defaults"
			}
			fmt.Fprintf(out, "config: %s\n", path)
			fmt.Fprintf(out, "templates: %d postfix, %d snippets\n", len(cfg.Templates), len(cfg.Snippets))
			for _, err := range errs {
				fmt.Fprintf(out, "  error: %v\n", err)
			}
			if len(errs) > 0 {
				return errors.Newf("%d invalid templates", len(errs))
			}
			fmt.Fprintf(out, "labels: %v\n", postfix.New(popts).Labels())
			return nil
		},
	}
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the config file",
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetActiveConfigPath(opts.configPath))
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				return config.SaveConfig(config.DefaultConfig(), opts.configPath)
			}
			return config.RebuildConfigFile()
		},
	}

	var maxLine int
	disable := &cobra.Command{
		Use:   "disable [labels...]",
		Short: "Set the disabled template labels, no labels enables all",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path := loadConfig(opts)
			if path == "" {
				return errors.New("no writable config file")
			}
			var limit *int
			if cmd.Flags().Changed("max-line") {
				limit = &maxLine
			}
			disabled := args
			if disabled == nil {
				disabled = []string{}
			}
			if err := cfg.Update(path, disabled, limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disabled: %v\n", disabled)
			return nil
		},
	}
	disable.Flags().IntVar(&maxLine, "max-line", 0, "Also set server.max_line_length")

	cmd.AddCommand(path, reset, disable)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			showVersion()
		},
	}
}

// runServe starts the msgpack IPC server and reloads config on change
func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, path := loadConfig(opts)
	live := postfix.NewLive(buildGenerator(cfg))
	srv := server.NewServer(live, cfg, path)

	showStartupInfo("msgpack", path)

	return runWithReload(ctx, path, func(c *config.Config) {
		live.Store(buildGenerator(c))
		srv.SetConfig(c)
	}, srv.Serve)
}

// runLSP starts the LSP server on stdio or WebSocket
func runLSP(ctx context.Context, opts *rootOptions, ws bool, addr string) error {
	lsp.ConfigureLogging(opts.debug)

	cfg, path := loadConfig(opts)
	live := postfix.NewLive(buildGenerator(cfg))
	srv := lsp.NewServer(live, lsp.Options{
		Name:              AppName,
		Version:           Version,
		TriggerCharacters: cfg.Server.TriggerCharacters,
		MaxDocuments:      cfg.LSP.MaxDocuments,
	}, opts.debug)

	onReload := func(c *config.Config) {
		live.Store(buildGenerator(c))
	}

	if !ws {
		return runWithReload(ctx, path, onReload, func(context.Context) error {
			return srv.RunStdio()
		})
	}

	if addr == "" {
		addr = cfg.LSP.Addr
	}
	showStartupInfo("lsp ws://"+addr, path)
	return runWithReload(ctx, path, onReload, func(ctx context.Context) error {
		return srv.ServeWebSocket(ctx, addr)
	})
}

// runWithReload runs serve next to a config watcher. It returns when serve
// returns or ctx is done; serve may still be blocked on a read then, which
// ends with the process.
func runWithReload(ctx context.Context, path string, onReload func(*config.Config), serve func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if path != "" {
		w, err := config.NewWatcher(path, onReload)
		if err != nil {
			log.Warnf("Config reload disabled: %v", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	served := make(chan error, 1)
	go func() { served <- serve(gctx) }()

	var err error
	select {
	case err = <-served:
	case <-gctx.Done():
		log.Debug("Shutting down")
	}
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

// runUntilDone runs a blocking loop that has no context of its own
func runUntilDone(ctx context.Context, run func() error) error {
	return runWithReload(ctx, "", nil, func(context.Context) error { return run() })
}

func loadConfig(opts *rootOptions) (*config.Config, string) {
	cfg, path, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		log.Warnf("Failed to load config: %v. Using built-in defaults...", err)
		return config.DefaultConfig(), ""
	}
	log.Debugf("Using config file: (%s)", path)
	return cfg, path
}

// buildGenerator logs invalid templates and builds from the rest
func buildGenerator(cfg *config.Config) *postfix.Generator {
	gen, errs := postfix.FromConfig(cfg)
	for _, err := range errs {
		log.Warnf("Skipping template: %v", err)
	}
	return gen
}

// showStartupInfo displays some basic info on stderr
func showStartupInfo(mode, configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	if configPath == "" {
		configPath = "builtin defaults"
	}
	log.Infof("gopostfix %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("mode: %s", mode)
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
}

func showVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ gopostfix ] Postfix snippets for Go!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}
