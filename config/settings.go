package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server  ServerSettings `json:"server"`
	API     APISettings    `json:"api"`
	Sources []SourceConfig `json:"sources"`
	HTTP    HTTPSettings   `json:"http"`
	Log     LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// APISettings holds the identity fields echoed in every JSON response.
type APISettings struct {
	Author  string `json:"author"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type SourceConfig struct {
	Name           string `json:"name"`           // "baiscope", "cineru", "piratelk", "zoom"
	BaseURL        string `json:"baseUrl"`        // Empty uses the site's default
	TimeoutSeconds int    `json:"timeoutSeconds"` // Per-request timeout (default 10)
	Offline        bool   `json:"offline"`        // Hide from the sources listing while keeping it searchable by name
	Enabled        bool   `json:"enabled"`
}

// Timeout returns the configured request timeout, defaulting to 10 seconds.
func (c SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HTTPSettings configures outbound requests to source sites.
type HTTPSettings struct {
	UserAgent string `json:"userAgent"`
}

// LogConfig represents rotating log file configuration.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7777},
		API: APISettings{
			Author:  "TheCHARITH (Charith Pramodya Senananayake)",
			Name:    "Sinhala Subtitle Search API",
			Version: "1.0.0",
		},
		Sources: []SourceConfig{
			{Name: "baiscope", TimeoutSeconds: 10, Enabled: true},
			{Name: "cineru", TimeoutSeconds: 10, Enabled: true},
			{Name: "piratelk", TimeoutSeconds: 10, Enabled: true},
			{Name: "zoom", TimeoutSeconds: 10, Enabled: true},
		},
		HTTP: HTTPSettings{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Log: LogConfig{
			File:       "cache/logs/subhub.log",
			MaxSize:    20, // MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
	fs   afero.Fs
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(configPath, afero.NewOsFs())
}

// NewManagerWithFs builds a manager on top of an arbitrary filesystem.
func NewManagerWithFs(configPath string, fs afero.Fs) *Manager {
	return &Manager{path: configPath, fs: fs}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	if !exists {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := m.fs.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	// Decode over the defaults so sections missing from older files keep sane values.
	// Sources decode into a fresh slice; decoding over the default slice would
	// merge file entries into the default entries at the same index.
	s := DefaultSettings()
	file := struct {
		*Settings
		Sources *[]SourceConfig `json:"sources"`
	}{Settings: &s}
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return Settings{}, err
	}
	if file.Sources != nil {
		s.Sources = *file.Sources
	}
	normalize(&s)
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return replaceFile(m.fs, m.path, append(data, '\n'))
}

// replaceFile swaps data into path through a sibling temp file, so readers
// see either the old settings or the new ones.
func replaceFile(fs afero.Fs, path string, data []byte) (err error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write temp settings: %w", err)
	}
	return fs.Rename(tmp.Name(), path)
}

func normalize(s *Settings) {
	defaults := DefaultSettings()
	if s.Server.Port <= 0 {
		s.Server.Port = defaults.Server.Port
	}
	if strings.TrimSpace(s.API.Name) == "" {
		s.API.Name = defaults.API.Name
	}
	if strings.TrimSpace(s.API.Version) == "" {
		s.API.Version = defaults.API.Version
	}
	if strings.TrimSpace(s.HTTP.UserAgent) == "" {
		s.HTTP.UserAgent = defaults.HTTP.UserAgent
	}
	for i := range s.Sources {
		s.Sources[i].Name = strings.ToLower(strings.TrimSpace(s.Sources[i].Name))
	}
}
