package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Config
	}{
		{
			name:     "absent action is init",
			input:    `{"apikey":"key-1"}`,
			expected: InitConfig{APIKey: "key-1"},
		},
		{
			name:     "null action is not init",
			input:    `{"action":null,"apikey":"key-1"}`,
			expected: UnknownConfig{Tag: "null"},
		},
		{
			name:     "empty action is init",
			input:    `{"action":"","apikey":"key-2"}`,
			expected: InitConfig{APIKey: "key-2"},
		},
		{
			name:     "explicit init",
			input:    `{"action":"init","apikey":"key-3:fx"}`,
			expected: InitConfig{APIKey: "key-3:fx"},
		},
		{
			name:     "init without key",
			input:    `{"action":"init"}`,
			expected: InitConfig{},
		},
		{
			name:     "detect",
			input:    `{"action":"detect","args":{"message":"Bonjour"}}`,
			expected: DetectConfig{Message: "Bonjour"},
		},
		{
			name:     "translate with source",
			input:    `{"action":"translate","args":{"message":"Hello","source":"EN","target":"DE"}}`,
			expected: TranslateConfig{Message: "Hello", Source: "EN", Target: "DE"},
		},
		{
			name:     "translate without source",
			input:    `{"action":"translate","args":{"message":"Hello","target":"JA"}}`,
			expected: TranslateConfig{Message: "Hello", Target: "JA"},
		},
		{
			name:     "translate without args",
			input:    `{"action":"translate"}`,
			expected: TranslateConfig{},
		},
		{
			name:     "unknown action",
			input:    `{"action":"summarize","args":{"message":"x"}}`,
			expected: UnknownConfig{Tag: "summarize"},
		},
		{
			name:     "action is case sensitive",
			input:    `{"action":"Translate"}`,
			expected: UnknownConfig{Tag: "Translate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `action=translate`},
		{"non-string action", `{"action":42}`},
		{"args not an object", `{"action":"translate","args":"Hello"}`},
		{"detect args not an object", `{"action":"detect","args":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.input))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfigAction(t *testing.T) {
	assert.Equal(t, "init", InitConfig{}.Action())
	assert.Equal(t, "detect", DetectConfig{}.Action())
	assert.Equal(t, "translate", TranslateConfig{}.Action())
	assert.Equal(t, "other", UnknownConfig{Tag: "other"}.Action())
}

func TestFieldJSON(t *testing.T) {
	out, err := json.Marshal(Field{SourceLang: "EN", TargetLang: "DE", Text: "Hallo"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_lang":"EN","target_lang":"DE","text":"Hallo"}`, string(out))
}
