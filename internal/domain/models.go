// Package domain contains the configuration and result types exchanged
// between the plugin host and the DeepL component.
package domain

import (
	"encoding/json"
	"fmt"
)

// Action tags recognised in a configuration's "action" field.
const (
	ActionInit      = "init"
	ActionDetect    = "detect"
	ActionTranslate = "translate"
)

// Config is a host configuration. The set of implementations is closed:
// InitConfig, DetectConfig, TranslateConfig and UnknownConfig.
type Config interface {
	// Action returns the tag the configuration was selected by.
	Action() string
	config()
}

// InitConfig binds the component to a DeepL API key. Selected when the
// action is absent, empty or "init".
type InitConfig struct {
	APIKey string `json:"apikey"`
}

// Action implements Config.
func (InitConfig) Action() string { return ActionInit }
func (InitConfig) config() {}

// DetectConfig asks for language detection only.
type DetectConfig struct {
	Message string `json:"message"`
}

// Action implements Config.
func (DetectConfig) Action() string { return ActionDetect }
func (DetectConfig) config() {}

// TranslateConfig asks for Message to be translated into Target. An empty
// Source requests auto-detection.
type TranslateConfig struct {
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target"`
}

// Action implements Config.
func (TranslateConfig) Action() string { return ActionTranslate }
func (TranslateConfig) config() {}

// UnknownConfig carries an action tag the component does not recognise.
type UnknownConfig struct {
	Tag string
}

// Action implements Config.
func (c UnknownConfig) Action() string { return c.Tag }
func (UnknownConfig) config() {}

// Field is the result returned to the host by a successful translate.
// A nil *Field is the absent result.
type Field struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Text       string `json:"text"`
}

// envelope is the wire shape of a host configuration.
type envelope struct {
	Action json.RawMessage `json:"action"`
	APIKey string          `json:"apikey"`
	Args   json.RawMessage `json:"args"`
}

// nullTag is reported by a configuration whose action is JSON null. Only
// an absent action selects InitConfig.
const nullTag = "null"

// ParseConfig decodes a host configuration and selects its variant by the
// action tag. Only malformed JSON is rejected; missing fields decode to
// their zero values.
func ParseConfig(data []byte) (Config, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	action := ""
	if len(env.Action) > 0 {
		if string(env.Action) == nullTag {
			return UnknownConfig{Tag: nullTag}, nil
		}
		if err := json.Unmarshal(env.Action, &action); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	switch action {
	case "", ActionInit:
		return InitConfig{APIKey: env.APIKey}, nil
	case ActionDetect:
		var cfg DetectConfig
		if err := decodeArgs(env.Args, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case ActionTranslate:
		var cfg TranslateConfig
		if err := decodeArgs(env.Args, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return UnknownConfig{Tag: action}, nil
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	return nil
}

