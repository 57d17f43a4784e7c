package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/shesh/core/history"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/shesh.24
	defaultShellConfigData []byte

	//go:embed default/settings.yaml
	defaultSettingsData []byte
)

const (
	ShellConfigName = "shesh.24"
	SettingsName    = "settings.yaml"
	HistoryName     = "history"
	AppLogName      = "shesh.log"

	DefaultPrompt = "shesh> "
)

// Color modes for the color setting.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// Settings are the tunables read from settings.yaml.
type Settings struct {
	HistoryFile    string `json:"history_file"`
	LogFile        string `json:"log_file"`
	LogLevel       string `json:"log_level" validate:"oneof=debug info warn error"`
	MaxCompletions int    `json:"max_completions" validate:"gte=1,lte=1000"`
	Color          string `json:"color" validate:"oneof=always auto never"`
}

// Validate the settings for basic semantic errors.
func (s *Settings) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(s)
}

// ColorEnabled resolves the color mode, auto uses terminalColor.
func (s *Settings) ColorEnabled(terminalColor bool) bool {
	switch s.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminalColor
	}
}

// Configuration is everything loaded from the configuration directory.
type Configuration struct {
	configFs afero.Fs
	paths    Paths

	// Prompt is shown before every line.
	Prompt string
	// Startup commands run once before the first prompt.
	Startup []string

	Settings
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// Paths are the directories the configuration was loaded with.
func (c *Configuration) Paths() Paths {
	return c.paths
}

func (c *Configuration) resolve(path, fallbackDir, fallbackName string) string {
	switch {
	case path == "":
		return filepath.Join(fallbackDir, fallbackName)
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(c.paths.Config, path)
	}
}

// HistoryPath is the location of the history file.
func (c *Configuration) HistoryPath() string {
	return c.resolve(c.HistoryFile, c.paths.Data, HistoryName)
}

// HistoryStore opens the history file.
func (c *Configuration) HistoryStore() *history.Store {
	return history.NewStore(c.fs(), c.HistoryPath())
}

// AppLogPath is the location of the application log.
func (c *Configuration) AppLogPath() string {
	return c.resolve(c.LogFile, c.paths.State, AppLogName)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	path := c.AppLogPath()
	if err := c.fs().MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return c.fs().OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadAppLog opens the application log for reading.
func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(c.AppLogPath(), os.O_RDONLY, 0600)
}

func defaultSettings() *Settings {
	var out Settings
	if err := yaml.UnmarshalStrict(defaultSettingsData, &out); err != nil {
		panic(err)
	}
	return &out
}
