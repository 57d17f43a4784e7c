package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinSettings(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultSettingsData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Settings{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default settings missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default settings contains invalid field: %q", k)
	}
}

func TestDefaultSettings(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	settings := defaultSettings()
	assert.NotNil(t, settings)
	assert.NoError(t, settings.Validate())
}

func TestBuiltinShellConfig(t *testing.T) {
	prompt, startup := ParseShellConfig(defaultShellConfigData)
	assert.Equal(t, DefaultPrompt, prompt)
	assert.Equal(t, []string{`echo "shesh ready!"`}, startup)
}

func TestSettings_Validate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Settings)
		wantErr string
	}{
		"defaults": {
			mutate: func(*Settings) {},
		},
		"bad-level": {
			mutate:  func(s *Settings) { s.LogLevel = "loud" },
			wantErr: "log_level",
		},
		"zero-completions": {
			mutate:  func(s *Settings) { s.MaxCompletions = 0 },
			wantErr: "max_completions",
		},
		"bad-color": {
			mutate:  func(s *Settings) { s.Color = "sometimes" },
			wantErr: "color",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			settings := defaultSettings()
			tc.mutate(settings)

			err := settings.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestSettings_ColorEnabled(t *testing.T) {
	cases := map[string]struct {
		color    string
		terminal bool
		want     bool
	}{
		"always":        {color: ColorAlways, terminal: false, want: true},
		"never":         {color: ColorNever, terminal: true, want: false},
		"auto-terminal": {color: ColorAuto, terminal: true, want: true},
		"auto-pipe":     {color: ColorAuto, terminal: false, want: false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			settings := Settings{Color: tc.color}
			assert.Equal(t, tc.want, settings.ColorEnabled(tc.terminal))
		})
	}
}
