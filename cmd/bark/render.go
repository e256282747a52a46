// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/axiomhive/bark/lib/ipc"
	"github.com/axiomhive/bark/lib/stats"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(20)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("76")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// renderStatus formats the `bark status` summary.
func renderStatus(enforcing bool, level ipc.Entropy, counters ipc.Stats, info ipc.Version) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	enforcement := okStyle.Render("enforcing")
	if !enforcing {
		enforcement = warnStyle.Render("disabled")
	}

	entropyValue := valueStyle.Render(fmt.Sprintf("%d / %d", level.Level, level.Ceiling))
	if level.Level > level.Ceiling {
		entropyValue = warnStyle.Render(fmt.Sprintf("%d / %d (exceeded)", level.Level, level.Ceiling))
	}

	row("enforcement", enforcement)
	row("entropy", entropyValue)
	row("authorizations", valueStyle.Render(fmt.Sprintf("%d", counters.Counters.Authorizations)))
	row("denials", valueStyle.Render(fmt.Sprintf("%d", counters.Counters.Denials)))
	row("entropy blocks", valueStyle.Render(fmt.Sprintf("%d", counters.Counters.EntropyBlocks)))
	row("signature failures", valueStyle.Render(fmt.Sprintf("%d", counters.Counters.SignatureFailures)))
	row("version", valueStyle.Render(info.Version))
	row("authority", valueStyle.Render(info.Authority))

	return strings.TrimRight(b.String(), "\n")
}

// renderVerdict formats one authorization probe result.
func renderVerdict(verdict ipc.Verdict) string {
	if verdict.Authorized {
		return fmt.Sprintf("%s state=%s entropy=%d",
			okStyle.Render("allow"), verdict.State, verdict.EntropyLevel)
	}
	return fmt.Sprintf("%s state=%s entropy=%d reason=%q",
		warnStyle.Render("deny"), verdict.State, verdict.EntropyLevel, verdict.Reason)
}

// renderEvent formats one audit event line.
func renderEvent(event stats.Event) string {
	timestamp := event.Time.Format("15:04:05.000")
	switch event.Kind {
	case stats.EventAuthorization:
		return fmt.Sprintf("%s %s task=%d entropy=%d",
			timestamp, okStyle.Render("authorized"), event.Task, event.Level)
	case stats.EventViolation:
		subject := fmt.Sprintf("task=%d", event.Task)
		if event.File != "" {
			subject = "file=" + event.File
		}
		return fmt.Sprintf("%s %s %s reason=%q",
			timestamp, warnStyle.Render("violation"), subject, event.Reason)
	case stats.EventEntropyExceeded:
		return fmt.Sprintf("%s %s level=%d ceiling=%d",
			timestamp, warnStyle.Render("entropy-exceeded"), event.Level, event.Ceiling)
	default:
		return fmt.Sprintf("%s unknown event", timestamp)
	}
}
