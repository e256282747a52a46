// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/axiomhive/bark/lib/control"
	"github.com/axiomhive/bark/lib/ipc"
	"github.com/axiomhive/bark/lib/signature"
)

func client() *control.Client {
	return control.NewClient(socketPath)
}

func statusCommand() *command {
	return &command{
		name:    "status",
		summary: "Show gate status: enforcement, entropy, counters.",
		run: func(args []string) error {
			c := client()

			var flag ipc.Flag
			if err := c.Call(ipc.Request{Action: ipc.ActionEnforce}, &flag); err != nil {
				return err
			}
			var level ipc.Entropy
			if err := c.Call(ipc.Request{Action: ipc.ActionEntropyLevel}, &level); err != nil {
				return err
			}
			var counters ipc.Stats
			if err := c.Call(ipc.Request{Action: ipc.ActionStats}, &counters); err != nil {
				return err
			}
			var info ipc.Version
			if err := c.Call(ipc.Request{Action: ipc.ActionVersion}, &info); err != nil {
				return err
			}

			fmt.Println(renderStatus(flag.Enabled, level, counters, info))
			return nil
		},
	}
}

func statsCommand() *command {
	return &command{
		name:    "stats",
		summary: "Print the four decision counters.",
		run: func(args []string) error {
			var response ipc.Stats
			if err := client().Call(ipc.Request{Action: ipc.ActionStats}, &response); err != nil {
				return err
			}
			fmt.Printf("authorizations: %d\n", response.Counters.Authorizations)
			fmt.Printf("denials: %d\n", response.Counters.Denials)
			fmt.Printf("entropy_blocks: %d\n", response.Counters.EntropyBlocks)
			fmt.Printf("signature_failures: %d\n", response.Counters.SignatureFailures)
			if response.AuditDropped > 0 {
				fmt.Printf("audit_dropped: %d\n", response.AuditDropped)
			}
			return nil
		},
	}
}

// flagCommand builds an on/off tunable command (enforce, verbose).
func flagCommand(name, summary, action string) *command {
	return &command{
		name:    name,
		usage:   fmt.Sprintf("bark %s [on|off]", name),
		summary: summary,
		run: func(args []string) error {
			request := ipc.Request{Action: action}
			switch {
			case len(args) == 0:
				// Read.
			case args[0] == "on" || args[0] == "off":
				request.Set = true
				request.Enabled = args[0] == "on"
			default:
				return fmt.Errorf("argument must be \"on\" or \"off\", got %q", args[0])
			}
			var response ipc.Flag
			if err := client().Call(request, &response); err != nil {
				return err
			}
			if response.Enabled {
				fmt.Println("on")
			} else {
				fmt.Println("off")
			}
			return nil
		},
	}
}

func enforceCommand() *command {
	return flagCommand("enforce", "Read or set the enforcement mode.", ipc.ActionEnforce)
}

func verboseCommand() *command {
	return flagCommand("verbose", "Read or set verbose audit logging.", ipc.ActionVerbose)
}

func ceilingCommand() *command {
	return &command{
		name:    "ceiling",
		usage:   "bark ceiling [value]",
		summary: "Read or set the entropy ceiling.",
		run: func(args []string) error {
			request := ipc.Request{Action: ipc.ActionCeiling}
			if len(args) > 0 {
				value, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid ceiling %q: %w", args[0], err)
				}
				request.Set = true
				request.Value = value
			}
			var response ipc.Ceiling
			if err := client().Call(request, &response); err != nil {
				return err
			}
			fmt.Println(response.Value)
			return nil
		},
	}
}

func entropyCommand() *command {
	return &command{
		name:    "entropy",
		usage:   "bark entropy [reset]",
		summary: "Read (or reset) the entropy counter.",
		run: func(args []string) error {
			action := ipc.ActionEntropyLevel
			if len(args) > 0 {
				if args[0] != "reset" {
					return fmt.Errorf("argument must be \"reset\", got %q", args[0])
				}
				action = ipc.ActionEntropyReset
			}
			var response ipc.Entropy
			if err := client().Call(ipc.Request{Action: action}, &response); err != nil {
				return err
			}
			fmt.Printf("%d / %d\n", response.Level, response.Ceiling)
			return nil
		},
	}
}

func eventsCommand() *command {
	var count uint64
	return &command{
		name:    "events",
		summary: "Show recent audit events.",
		flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("events", pflag.ContinueOnError)
			flags.Uint64VarP(&count, "count", "n", 20, "maximum events to show")
			return flags
		},
		run: func(args []string) error {
			var response ipc.Events
			request := ipc.Request{Action: ipc.ActionEvents, Value: count}
			if err := client().Call(request, &response); err != nil {
				return err
			}
			for _, event := range response.Events {
				fmt.Println(renderEvent(event))
			}
			if response.TotalEmitted > uint64(len(response.Events)) {
				fmt.Printf("(%d total emitted)\n", response.TotalEmitted)
			}
			return nil
		},
	}
}

func authorizeCommand() *command {
	return &command{
		name:    "authorize",
		usage:   "bark authorize <task|exec|cred|access> <subject>",
		summary: "Probe the gate with a manual authorization request.",
		subcommands: []*command{
			authorizeTaskCommand("task", "Probe task-creation authorization for a pid.", ipc.ActionAuthorizeTask),
			authorizeFileCommand("exec", "Probe binary-execution authorization for a path.", ipc.ActionAuthorizeExec),
			authorizeTaskCommand("cred", "Probe credential-change authorization for a pid.", ipc.ActionAuthorizeCredChange),
			authorizeFileCommand("access", "Probe file-access authorization for a path.", ipc.ActionAuthorizeFileAccess),
		},
	}
}

func authorizeTaskCommand(name, summary, action string) *command {
	return &command{
		name:    name,
		summary: summary,
		run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one pid argument required")
			}
			pid, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pid %q: %w", args[0], err)
			}
			return callAuthorize(ipc.Request{Action: action, Task: pid})
		},
	}
}

func authorizeFileCommand(name, summary, action string) *command {
	return &command{
		name:    name,
		summary: summary,
		run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one path argument required")
			}
			return callAuthorize(ipc.Request{Action: action, File: args[0]})
		},
	}
}

func callAuthorize(request ipc.Request) error {
	var response ipc.Verdict
	if err := client().Call(request, &response); err != nil {
		return err
	}
	fmt.Println(renderVerdict(response))
	if !response.Authorized {
		// Deny surfaces as a nonzero exit so scripts can branch on it.
		return fmt.Errorf("denied: %s", response.Reason)
	}
	return nil
}

func signCommand() *command {
	var stateDir string
	return &command{
		name:    "sign",
		usage:   "bark sign --state-dir <dir> <binary>...",
		summary: "Sign binaries with the authority private key.",
		flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("sign", pflag.ContinueOnError)
			flags.StringVar(&stateDir, "state-dir", "", "directory holding the authority keypair (required)")
			return flags
		},
		run: func(args []string) error {
			if stateDir == "" {
				return fmt.Errorf("--state-dir is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one binary path required")
			}
			_, privateKey, err := signature.LoadKeypair(stateDir)
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := signature.SignFile(privateKey, path); err != nil {
					return err
				}
				fmt.Printf("signed %s\n", path)
			}
			return nil
		},
	}
}

func verifyCommand() *command {
	var stateDir string
	return &command{
		name:    "verify",
		usage:   "bark verify --state-dir <dir> <binary>...",
		summary: "Verify binaries locally against the authority public key.",
		flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flags.StringVar(&stateDir, "state-dir", "", "directory holding the authority public key (required)")
			return flags
		},
		run: func(args []string) error {
			if stateDir == "" {
				return fmt.Errorf("--state-dir is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one binary path required")
			}
			publicKey, err := signature.LoadPublicKey(stateDir)
			if err != nil {
				return err
			}
			verifier, err := signature.NewAuthorityVerifier(publicKey)
			if err != nil {
				return err
			}
			failed := false
			for _, path := range args {
				outcome, err := verifier.Verify(signature.FileID(path))
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s (%s)\n", path, outcome.State, signature.FormatDigest(outcome.Digest))
				if outcome.State != signature.StateValid {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more binaries did not verify")
			}
			return nil
		},
	}
}

func keygenCommand() *command {
	var stateDir string
	return &command{
		name:    "keygen",
		usage:   "bark keygen --state-dir <dir>",
		summary: "Generate a fresh authority keypair (lab and test setups).",
		flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flags.StringVar(&stateDir, "state-dir", "", "directory to write the keypair into (required)")
			return flags
		},
		run: func(args []string) error {
			if stateDir == "" {
				return fmt.Errorf("--state-dir is required")
			}
			publicKey, privateKey, err := signature.GenerateKeypair()
			if err != nil {
				return err
			}
			if err := signature.SaveKeypair(stateDir, publicKey, privateKey); err != nil {
				return err
			}
			fmt.Printf("wrote authority keypair to %s\n", stateDir)
			return nil
		},
	}
}
