package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigID is the preset sessions use when none is requested
const DefaultConfigID = "classic"

// Manager handles game preset loading and caching. Files in the config
// directory take precedence over the built-in classic preset.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. A missing directory is not
// an error: the manager then serves the built-in preset only.
func NewManager(configDir string) (*Manager, error) {
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	} else if os.IsNotExist(err) {
		log.WithField("dir", configDir).Warn("config directory does not exist, using built-in presets")
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := readConfigFile(filepath.Join(m.configDir, name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		if name != DefaultConfigID {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		config, err = engine.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// readConfigFile parses and validates a single preset file
func readConfigFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// presetIDs returns the identifiers of every preset on disk plus the built-in one
func (m *Manager) presetIDs() []string {
	seen := map[string]bool{DefaultConfigID: true}
	ids := []string{DefaultConfigID}

	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return ids
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ListConfigs returns information about all available presets
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo

	for _, id := range m.presetIDs() {
		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			log.WithField("config", id).WithError(err).Debug("skipping preset")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Seeded:      config.Seed != 0,
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// Count returns the number of cached presets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig loads classic.json, falling back to the built-in preset
// when the file is missing or invalid
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigID)
	if err != nil {
		log.WithError(err).Warn("classic preset is invalid, using built-in default")
		config = engine.DefaultConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// ValidationResult captures the outcome of validating a single preset file.
// If Valid is true, Info holds informational notes; otherwise Errors lists
// what was wrong.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// ValidateDir checks every *.json preset in dir without caching anything
func ValidateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config files: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateFile(file))
	}
	return results, nil
}

func validateFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	config, err := readConfigFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if config.Seed != 0 {
		result.Info = append(result.Info, fmt.Sprintf("Pinned seed %d: every session replays the same shuffles", config.Seed))
	} else {
		result.Info = append(result.Info, "Unseeded: shuffles differ per session")
	}
	if config.Messages.Ignored == "" {
		result.Info = append(result.Info, "No ignored message: illegal clicks keep the previous status")
	}

	// Report the parity of the first shuffle so puzzle authors can pick a solvable seed
	if config.Seed != 0 {
		board := engine.Shuffle(engine.NewRand(config.Seed))
		if engine.IsSolvable(board) {
			result.Info = append(result.Info, "First shuffle is solvable")
		} else {
			result.Info = append(result.Info, "First shuffle is NOT solvable")
		}
	}
	return result
}
