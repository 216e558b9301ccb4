// Package handler provides the Lambda handler driving the DeepL component.
package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pricofy/deepl-component/internal/domain"
	"github.com/pricofy/deepl-component/internal/plugin"
)

// Request is one lifecycle call from the host.
type Request struct {
	// Lifecycle is "initialize", "process" or "finalize". Empty means process.
	Lifecycle string          `json:"lifecycle,omitempty"`
	Config    json.RawMessage `json:"config"`
}

// Response is the reply to the host.
type Response struct {
	Result *domain.Field `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Handler drives a single component across invocations of a warm Lambda
// instance.
type Handler struct {
	component plugin.Component
	log       *zap.SugaredLogger
}

// New creates a Handler for c.
func New(c plugin.Component, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{component: c, log: log}
}

// Handle runs one lifecycle call. Malformed requests are reported in the
// response body; errors from the component are returned unchanged.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	phase, cfg, err := decodeRequest(req)
	if err != nil {
		h.log.Warnw("rejected request", "error", err)
		return &Response{Error: err.Error()}, nil
	}

	field, err := plugin.Invoke(ctx, h.component, phase, cfg)
	if err != nil {
		h.log.Errorw("lifecycle call failed", "lifecycle", phase, "action", actionOf(cfg), "error", err)
		return nil, err
	}

	h.log.Infow("lifecycle call done", "lifecycle", phase, "action", actionOf(cfg), "result", field != nil)
	return &Response{Result: field}, nil
}

// decodeRequest checks the request is well formed.
func decodeRequest(req Request) (plugin.Phase, domain.Config, error) {
	phase, err := plugin.ParsePhase(req.Lifecycle)
	if err != nil {
		return "", nil, err
	}

	// Finalize ignores its configuration, so it may be omitted.
	if len(req.Config) == 0 || string(req.Config) == "null" {
		if phase == plugin.PhaseFinalize {
			return phase, nil, nil
		}
		return "", nil, fmt.Errorf("config is required")
	}

	cfg, err := domain.ParseConfig(req.Config)
	if err != nil {
		return "", nil, err
	}
	return phase, cfg, nil
}

func actionOf(cfg domain.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Action()
}
