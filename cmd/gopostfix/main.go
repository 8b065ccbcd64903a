// Copyright 2025 The gopostfix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the postfix completion server, LSP server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

gopostfix turns the expression typed before a trigger dot into a snippet.
Typing `items.` offers printf, len, append, range, if, iferr, switch, var and
errors; accepting one rewrites the receiver into the template:

	items.len   ->  len(items)
	err.iferr   ->  if err := err; err != nil { }

A separate catalog of context-free skeletons (main, for, iferrw) is matched
by word prefix when no dot is in play.

# Usage

Start the msgpack IPC server on stdin/stdout (the default):

	gopostfix

Serve the Language Server Protocol on stdio, or on a WebSocket:

	gopostfix lsp
	gopostfix lsp --ws --addr 127.0.0.1:7658

Run in CLI mode for interactive testing:

	gopostfix cli --limit 5 --snippet

Validate user templates in the config file:

	gopostfix check --config ./config.toml

Disable templates, or print the config file in use:

	gopostfix config disable switch errors
	gopostfix config path

# Configuration

Runtime configuration is a TOML file, created with defaults if it doesn't
exist. Server and LSP modes reload it on change without restart:

	[server]
	languages = ["go"]
	trigger_characters = ["."]
	max_line_length = 4096

	[postfix]
	disabled = ["switch"]

	[[postfix_template]]
	label = "log"
	body = "log.Println({{expr}})$0"

	[[snippet]]
	label = "test"
	body = "func Test${1:Name}(t *testing.T) {\n\t$0\n}"

Template bodies use LSP snippet syntax plus two variables: {{expr}} is the
receiver text and {{quoted}} the receiver escaped for a format string.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout:

	{"id": "req1", "l": "  items.", "c": 8, "t": "."}

	{"id": "req1", "s": [{"l": "printf", "i": "fmt.Printf(...)", "rs": 2, "re": 8, "r": 1}, ...], "c": 9, "t": 38}

Management requests:

	{"id": "a1", "action": "health"}
	{"id": "a2", "action": "list"}
	{"id": "a3", "action": "get_config"}

# Command Line Flags

	-d, --debug
	    Enable debug mode with detailed logging on stderr
	--config string
	    Path to a config file (default [UserConfigDir]/gopostfix/config.toml)
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/gopostfix/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0-beta"
	AppName = "gopostfix"
	gh      = "https://github.com/bastiangx/gopostfix"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	debug      bool
	configPath string
}

// main only wires signals and the command tree, commands own the flow
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Postfix snippet completions for Go",
		Long:          "gopostfix offers postfix templates (expr.len, err.iferr, ...) over msgpack IPC or LSP",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file")

	root.AddCommand(
		newServeCommand(opts),
		newLSPCommand(opts),
		newCLICommand(opts),
		newCheckCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}
