// Package plugin defines the host side contract of a component and the
// single entry point host adapters use to drive one.
package plugin

import (
	"context"
	"fmt"

	"github.com/pricofy/deepl-component/internal/domain"
)

// Component is the lifecycle contract a host drives: Initialize once,
// Process any number of times, Finalize once. Calls on one component are
// never concurrent.
type Component interface {
	Initialize(ctx context.Context, cfg domain.Config) error
	Process(ctx context.Context, cfg domain.Config) (*domain.Field, error)
	Finalize(ctx context.Context, cfg domain.Config) error
}

// Phase names a lifecycle step.
type Phase string

// Lifecycle phases.
const (
	PhaseInitialize Phase = "initialize"
	PhaseProcess    Phase = "process"
	PhaseFinalize   Phase = "finalize"
)

// ParsePhase maps a host supplied phase name to a Phase. The empty name is
// a process call.
func ParsePhase(name string) (Phase, error) {
	switch Phase(name) {
	case "", PhaseProcess:
		return PhaseProcess, nil
	case PhaseInitialize:
		return PhaseInitialize, nil
	case PhaseFinalize:
		return PhaseFinalize, nil
	}
	return "", fmt.Errorf("unknown lifecycle phase %q", name)
}

// Invoke runs one lifecycle step of c. Only PhaseProcess can produce a
// field.
func Invoke(ctx context.Context, c Component, phase Phase, cfg domain.Config) (*domain.Field, error) {
	switch phase {
	case PhaseInitialize:
		return nil, c.Initialize(ctx, cfg)
	case PhaseProcess:
		return c.Process(ctx, cfg)
	case PhaseFinalize:
		return nil, c.Finalize(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown lifecycle phase %q", phase)
}

// Run drives a full initialize, process, finalize cycle against c, the way
// a one-shot host does. A nil initCfg skips initialize so c is processed
// uninitialized. Finalize runs even when process fails.
func Run(ctx context.Context, c Component, initCfg, cfg domain.Config) (field *domain.Field, err error) {
	if initCfg != nil {
		if err := c.Initialize(ctx, initCfg); err != nil {
			return nil, err
		}
	}
	defer func() {
		if ferr := c.Finalize(ctx, cfg); ferr != nil && err == nil {
			err = ferr
		}
	}()

	return c.Process(ctx, cfg)
}
