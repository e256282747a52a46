// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command represents a CLI command or subcommand.
type command struct {
	// name is the command name as typed by the user.
	name string

	// summary is a one-line description shown in the parent's help
	// listing.
	summary string

	// usage is the usage string (e.g., "bark ceiling [value]"). If
	// empty, it is synthesized from name.
	usage string

	// flags returns a configured *pflag.FlagSet for this command.
	// Called lazily on first use. If nil, the command accepts no
	// flags beyond the globals.
	flags func() *pflag.FlagSet

	// subcommands are nested commands dispatched by the first
	// positional argument.
	subcommands []*command

	// run executes the command with the remaining args after flag
	// parsing.
	run func(args []string) error
}

// execute parses args and dispatches to the appropriate subcommand or
// run function.
func (c *command) execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(os.Stderr)
		return nil
	}

	if len(c.subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				return sub.execute(args[1:])
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun 'bark --help' for usage.", args[0])
	}

	if len(c.subcommands) > 0 && c.run == nil {
		c.printHelp(os.Stderr)
		if len(args) == 0 {
			return fmt.Errorf("subcommand required")
		}
		return fmt.Errorf("subcommand required (got %q)", args[0])
	}

	if c.flags != nil {
		flagSet := c.flags()
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			return fmt.Errorf("%s\n\nRun 'bark %s --help' for usage.", err, c.name)
		}
		args = flagSet.Args()
	}

	if c.run != nil {
		return c.run(args)
	}
	c.printHelp(os.Stderr)
	return nil
}

// printHelp writes usage, summary, and the subcommand table.
func (c *command) printHelp(w io.Writer) {
	if c.usage != "" {
		fmt.Fprintf(w, "Usage: %s\n", c.usage)
	} else {
		fmt.Fprintf(w, "Usage: %s\n", c.name)
	}
	if c.summary != "" {
		fmt.Fprintf(w, "\n%s\n", c.summary)
	}
	if len(c.subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.name, sub.summary)
		}
		tw.Flush()
	}
	if c.flags != nil {
		fmt.Fprintf(w, "\nFlags:\n%s", c.flags().FlagUsages())
	}
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
