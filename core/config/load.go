package config

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

const startupMarker = "startup"

// ParseShellConfig reads the prompt and startup commands from a shesh.24
// file.
//
// Lines starting with # are comments, except a "#startup" marker after which
// every non-empty line is a startup command. Before the marker only
// `prompt = "<string>"` is recognized.
func ParseShellConfig(data []byte) (prompt string, startup []string) {
	prompt = DefaultPrompt
	inStartup := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())

		if trimmed == "" {
			continue
		}

		if comment := strings.TrimPrefix(trimmed, "#"); comment != trimmed {
			if strings.EqualFold(strings.TrimSpace(comment), startupMarker) {
				inStartup = true
			}
			continue
		}

		if inStartup {
			startup = append(startup, trimmed)
			continue
		}

		if key, value, ok := strings.Cut(trimmed, "="); ok && strings.TrimSpace(key) == "prompt" {
			prompt = unquote(strings.TrimSpace(value))
		}
	}

	return prompt, startup
}

// unquote removes shell quoting from a single word and falls back to
// trimming double quotes from anything else.
func unquote(value string) string {
	if words, err := shlex.Split(value, true); err == nil && len(words) == 1 {
		return words[0]
	}
	return strings.Trim(value, `"`)
}

// Load reads the configuration in paths.Config from fsys. Missing files fall
// back to defaults.
func Load(fsys afero.Fs, paths Paths) (*Configuration, error) {
	out := &Configuration{
		configFs: fsys,
		paths:    paths,
		Prompt:   DefaultPrompt,
		Settings: *defaultSettings(),
	}

	settingsData, err := afero.ReadFile(fsys, paths.SettingsPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Keep defaults.
	case err != nil:
		return nil, err
	default:
		if err := yaml.UnmarshalStrict(settingsData, &out.Settings); err != nil {
			return nil, err
		}
	}

	if err := out.Settings.Validate(); err != nil {
		return nil, err
	}

	shellData, err := afero.ReadFile(fsys, paths.ShellConfigPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Keep defaults.
	case err != nil:
		return nil, err
	default:
		out.Prompt, out.Startup = ParseShellConfig(shellData)
	}

	return out, nil
}

// Initialize writes the default configuration files into paths.Config if
// they don't exist yet and loads the result.
func Initialize(fsys afero.Fs, paths Paths, logger *log.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(paths.Config, 0700); err != nil {
		return nil, err
	}

	defaults := []struct {
		path string
		data []byte
	}{
		{paths.ShellConfigPath(), defaultShellConfigData},
		{paths.SettingsPath(), defaultSettingsData},
	}

	for _, file := range defaults {
		exists, err := afero.Exists(fsys, file.path)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.Printf("Keeping existing %s", file.path)
			continue
		}

		logger.Printf("Writing default %s", file.path)
		if err := afero.WriteFile(fsys, file.path, file.data, 0600); err != nil {
			return nil, err
		}
	}

	return Load(fsys, paths)
}
