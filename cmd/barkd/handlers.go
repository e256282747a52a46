// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/axiomhive/bark/lib/codec"
	"github.com/axiomhive/bark/lib/config"
	"github.com/axiomhive/bark/lib/control"
	"github.com/axiomhive/bark/lib/entropy"
	"github.com/axiomhive/bark/lib/gate"
	"github.com/axiomhive/bark/lib/ipc"
	"github.com/axiomhive/bark/lib/signature"
	"github.com/axiomhive/bark/lib/stats"
	"github.com/axiomhive/bark/lib/version"
)

// daemon bundles everything the action handlers reach into.
type daemon struct {
	config   config.Config
	settings *config.Runtime
	governor *entropy.Governor
	gate     *gate.Gate
	counters *stats.Counters
	trail    *stats.Trail
	ring     *stats.RingSink
	logger   *slog.Logger
}

// registerActions wires the control-socket action table. The
// authorize actions translate gate verdicts into wire payloads; a
// denial is a successful response carrying Authorized=false, not a
// protocol error — the dispatcher needs the verdict either way.
func registerActions(server *control.Server, d *daemon) {
	server.Handle(ipc.ActionAuthorizeTask, d.authorizeTask)
	server.Handle(ipc.ActionAuthorizeExec, d.authorizeExec)
	server.Handle(ipc.ActionAuthorizeCredChange, d.authorizeCredChange)
	server.Handle(ipc.ActionAuthorizeFileAccess, d.authorizeFileAccess)
	server.Handle(ipc.ActionEntropyEvent, d.entropyEvent)
	server.Handle(ipc.ActionEntropyLevel, d.entropyLevel)
	server.Handle(ipc.ActionEntropyReset, d.entropyReset)
	server.Handle(ipc.ActionEnforce, d.enforce)
	server.Handle(ipc.ActionCeiling, d.ceiling)
	server.Handle(ipc.ActionVerbose, d.verbose)
	server.Handle(ipc.ActionStats, d.stats)
	server.Handle(ipc.ActionEvents, d.events)
	server.Handle(ipc.ActionVersion, d.version)
}

func decodeRequest(raw []byte) (ipc.Request, error) {
	var request ipc.Request
	if err := codec.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("decoding request: %w", err)
	}
	return request, nil
}

func verdict(result gate.Result) ipc.Verdict {
	return ipc.Verdict{
		Authorized:   result.Authorized,
		State:        result.State.String(),
		EntropyLevel: result.EntropyLevel,
		Reason:       result.Reason,
	}
}

func (d *daemon) authorizeTask(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	result, _ := d.gate.AuthorizeTaskCreation(signature.TaskID(request.Task))
	return verdict(result), nil
}

func (d *daemon) authorizeExec(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	result, _ := d.gate.AuthorizeFileExecution(signature.FileID(request.File))
	return verdict(result), nil
}

func (d *daemon) authorizeCredChange(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	result, _ := d.gate.AuthorizeCredentialChange(signature.TaskID(request.Task))
	return verdict(result), nil
}

func (d *daemon) authorizeFileAccess(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	result, _ := d.gate.AuthorizeFileAccess(signature.FileID(request.File), request.Mask)
	return verdict(result), nil
}

// eventKinds maps wire category names to entropy event kinds.
var eventKinds = map[string]entropy.EventKind{
	"process-creation": entropy.KindProcessCreation,
	"network-io":       entropy.KindNetworkIO,
	"disk-io":          entropy.KindDiskIO,
	"timer":            entropy.KindTimer,
	"unclassified":     entropy.KindUnclassified,
}

func (d *daemon) entropyEvent(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	kind, ok := eventKinds[request.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", request.Kind)
	}
	d.gate.RecordEvent(kind)
	return ipc.Entropy{
		Level:   d.governor.Level(),
		Ceiling: d.settings.Ceiling(),
	}, nil
}

func (d *daemon) entropyLevel(ctx context.Context, raw []byte) (any, error) {
	return ipc.Entropy{
		Level:   d.governor.Level(),
		Ceiling: d.settings.Ceiling(),
	}, nil
}

func (d *daemon) entropyReset(ctx context.Context, raw []byte) (any, error) {
	d.governor.Reset()
	d.logger.Info("entropy counter reset")
	return ipc.Entropy{
		Level:   0,
		Ceiling: d.settings.Ceiling(),
	}, nil
}

func (d *daemon) enforce(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	if request.Set {
		d.settings.SetEnforcing(request.Enabled)
		d.logger.Info("enforcement changed", "enabled", request.Enabled)
	}
	return ipc.Flag{Enabled: d.settings.Enforcing()}, nil
}

func (d *daemon) ceiling(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	if request.Set {
		d.settings.SetCeiling(request.Value)
		d.logger.Info("entropy ceiling changed", "ceiling", request.Value)
	}
	return ipc.Ceiling{Value: d.settings.Ceiling()}, nil
}

func (d *daemon) verbose(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	if request.Set {
		d.settings.SetVerbose(request.Enabled)
		d.logger.Info("verbose audit changed", "enabled", request.Enabled)
	}
	return ipc.Flag{Enabled: d.settings.Verbose()}, nil
}

func (d *daemon) stats(ctx context.Context, raw []byte) (any, error) {
	return ipc.Stats{
		Counters:     d.counters.Snapshot(),
		AuditDropped: d.trail.Dropped(),
	}, nil
}

func (d *daemon) events(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	return ipc.Events{
		Events:       d.ring.Recent(int(request.Value)),
		TotalEmitted: d.ring.TotalEmitted(),
	}, nil
}

func (d *daemon) version(ctx context.Context, raw []byte) (any, error) {
	return ipc.Version{
		Version:   version.Info(),
		Authority: d.config.Authority,
	}, nil
}
