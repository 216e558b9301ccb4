// Package component implements the DeepL plugin component: a two-state
// lifecycle around a translator handle bound by initialize and released
// by finalize.
package component

import (
	"context"

	"go.uber.org/zap"

	"github.com/pricofy/deepl-component/internal/domain"
	"github.com/pricofy/deepl-component/internal/plugin"
	"github.com/pricofy/deepl-component/internal/translator"
)

var _ plugin.Component = (*Component)(nil)

// Component adapts a translator.Translator to the host component contract.
// It is not safe for concurrent use; the host serializes lifecycle calls.
type Component struct {
	newTranslator translator.Factory
	log           *zap.SugaredLogger

	// ready is nil while uninitialized.
	ready *ready
}

// Option configures a Component.
type Option func(*Component)

// WithLogger sets the component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Component) { c.log = log }
}

// New creates an uninitialized component that builds its translator with
// factory.
func New(factory translator.Factory, opts ...Option) *Component {
	c := &Component{
		newTranslator: factory,
		log:           zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready reports whether a translator handle is held.
func (c *Component) Ready() bool {
	return c.ready != nil
}

// Initialize binds a new translator when cfg is Init-shaped and replaces
// any handle already held. Other configurations are ignored. A failure to
// build the translator is returned as is and leaves the current handle in
// place.
func (c *Component) Initialize(_ context.Context, cfg domain.Config) error {
	initCfg, ok := cfg.(domain.InitConfig)
	if !ok {
		return nil
	}

	t, err := c.newTranslator(initCfg.APIKey)
	if err != nil {
		return err
	}

	rebind := c.ready != nil
	c.ready = &ready{translator: t}
	c.log.Debugw("translator bound", "rebind", rebind)
	return nil
}

// Process dispatches cfg by action. Only translate produces a result;
// every other action yields a nil field and no error.
func (c *Component) Process(ctx context.Context, cfg domain.Config) (*domain.Field, error) {
	switch cfg := cfg.(type) {
	case domain.TranslateConfig:
		if c.ready == nil {
			c.log.Debugw("translate skipped: no translator bound")
			return nil, nil
		}
		return c.ready.translate(ctx, cfg)
	case domain.InitConfig, domain.DetectConfig, domain.UnknownConfig:
		return nil, nil
	}
	return nil, nil
}

// Finalize releases the translator handle. It is idempotent and ignores cfg.
func (c *Component) Finalize(_ context.Context, _ domain.Config) error {
	if c.ready != nil {
		c.log.Debugw("translator released")
	}
	c.ready = nil
	return nil
}

// ready is the bound state of the component.
type ready struct {
	translator translator.Translator
}

// translate performs a single round trip. Collaborator errors are returned
// unwrapped.
func (r *ready) translate(ctx context.Context, cfg domain.TranslateConfig) (*domain.Field, error) {
	source := translator.AutoDetect
	if cfg.Source != "" {
		source = translator.SourceLang(cfg.Source)
	}

	result, err := r.translator.TranslateText(ctx, cfg.Message, source, cfg.Target)
	if err != nil {
		return nil, err
	}

	return &domain.Field{
		SourceLang: result.DetectedSourceLang,
		TargetLang: cfg.Target,
		Text:       result.Text,
	}, nil
}
