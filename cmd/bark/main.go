// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// bark is the operator CLI for the BARK gate daemon: query and tune
// the running gate over its control socket, and sign or verify
// binaries locally with the authority key material.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/axiomhive/bark/lib/config"
	"github.com/axiomhive/bark/lib/version"
)

// socketPath is the global --socket flag, shared by every command
// that talks to the daemon.
var socketPath string

func main() {
	root := &command{
		name:    "bark",
		usage:   "bark <command> [flags]",
		summary: "Operator CLI for the BARK process-lifecycle authorization gate.",
		subcommands: []*command{
			statusCommand(),
			statsCommand(),
			enforceCommand(),
			ceilingCommand(),
			verboseCommand(),
			entropyCommand(),
			eventsCommand(),
			authorizeCommand(),
			signCommand(),
			verifyCommand(),
			keygenCommand(),
			versionCommand(),
		},
	}

	// The global --socket flag is extracted before dispatch so every
	// subcommand sees it without re-declaring it.
	globals := pflag.NewFlagSet("bark", pflag.ContinueOnError)
	globals.StringVar(&socketPath, "socket", config.DefaultSocketPath, "barkd control socket path")
	globals.ParseErrorsWhitelist.UnknownFlags = true
	globals.Parse(os.Args[1:])

	args := stripGlobalFlags(os.Args[1:])
	if err := root.execute(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stripGlobalFlags removes --socket (and its value) from the argument
// list so subcommand flag sets do not trip over it.
func stripGlobalFlags(args []string) []string {
	result := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--socket" {
			i++ // skip the value
			continue
		}
		if len(args[i]) > 9 && args[i][:9] == "--socket=" {
			continue
		}
		result = append(result, args[i])
	}
	return result
}

func versionCommand() *command {
	return &command{
		name:    "version",
		summary: "Print bark version information.",
		run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
