package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

func createValidConfig() *engine.GameConfig {
	config := &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
	}
	config.Messages.Welcome = "Welcome!"
	config.Messages.Moved = "%d moves"
	config.Messages.Ignored = "Not in line"
	config.Messages.Victory = "You won!! %d moves"
	config.Messages.NewGame = "0 moves"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		classic := createValidConfig()
		classic.Name = "Classic From Disk"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic From Disk" {
			t.Errorf("Expected disk preset to be the default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory falls back to built-in", func(t *testing.T) {
		manager, err := NewManager("/non/existent/path")
		if err != nil {
			t.Fatalf("Expected built-in fallback, got error: %v", err)
		}
		if manager.GetDefault().Name != "classic" {
			t.Errorf("Expected built-in classic preset, got %q", manager.GetDefault().Name)
		}
		configs, err := manager.ListConfigs()
		if err != nil || len(configs) != 1 {
			t.Errorf("Expected only the built-in preset, got %d (err %v)", len(configs), err)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.json")
		if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := NewManager(file); err == nil {
			t.Error("Expected error when the config path is a file")
		}
	})

	t.Run("invalid classic file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "classic.json"), []byte(`{"name": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed with a broken classic.json, got: %v", err)
		}
		if manager.GetDefault() == nil || manager.GetDefault().Name != "classic" {
			t.Error("Expected built-in default when classic.json is invalid")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	daily := createValidConfig()
	daily.Name = "Daily"
	daily.Seed = 20261017
	writeConfigFile(t, dir, "daily", daily)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("daily")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Daily" {
			t.Errorf("Expected config name 'Daily', got '%s'", config.Name)
		}
		if config.Seed != 20261017 {
			t.Errorf("Expected seed 20261017, got %d", config.Seed)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("daily.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Daily" {
			t.Errorf("Expected config name 'Daily', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("daily")
		config2, err := manager.LoadConfig("daily")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("built-in classic", func(t *testing.T) {
		config, err := manager.LoadConfig("classic")
		if err != nil {
			t.Fatalf("Failed to load built-in classic: %v", err)
		}
		if config.Messages.Victory != "You won!! %d moves" {
			t.Errorf("Unexpected victory message %q", config.Messages.Victory)
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		data := `{"name":"x","description":"x","grid_size":5,"messages":{"welcome":"w","victory":"%d","new_game":"n"}}`
		if err := os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(data), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		_, err := manager.LoadConfig("legacy")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for unknown field, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	presets := []struct {
		filename string
		name     string
		seed     uint64
	}{
		{"daily", "Daily", 42},
		{"relaxed", "Relaxed", 0},
		{"speedrun", "Speedrun", 7},
	}
	for _, p := range presets {
		config := createValidConfig()
		config.Name = p.name
		config.Seed = p.seed
		writeConfigFile(t, dir, p.filename, config)
	}

	// Ignored: not JSON, and broken JSON
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	wantIDs := []string{"classic", "daily", "relaxed", "speedrun"}
	if len(configList) != len(wantIDs) {
		t.Fatalf("Expected %d configs, got %d", len(wantIDs), len(configList))
	}
	for i, info := range configList {
		if info.ConfigID != wantIDs[i] {
			t.Errorf("configs[%d] = %q, want %q", i, info.ConfigID, wantIDs[i])
		}
	}
	if !configList[1].Seeded || configList[2].Seeded {
		t.Errorf("Unexpected Seeded flags: daily=%v relaxed=%v", configList[1].Seeded, configList[2].Seeded)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// five presets plus the classic default
	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	seeded := createValidConfig()
	seeded.Seed = 99
	writeConfigFile(t, dir, "seeded", seeded)

	plain := createValidConfig()
	plain.Messages.Ignored = ""
	writeConfigFile(t, dir, "plain", plain)

	bad := createValidConfig()
	bad.Messages.Victory = "no count"
	writeConfigFile(t, dir, "bad", bad)

	results, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	byFile := make(map[string]ValidationResult)
	for _, r := range results {
		byFile[r.File] = r
	}

	if r := byFile["bad.json"]; r.Valid || len(r.Errors) == 0 {
		t.Errorf("Expected bad.json to be invalid, got %+v", r)
	}
	if r := byFile["seeded.json"]; !r.Valid || len(r.Info) != 2 {
		t.Errorf("Expected seeded.json valid with seed and parity notes, got %+v", r)
	}
	if r := byFile["plain.json"]; !r.Valid || len(r.Info) != 2 {
		t.Errorf("Expected plain.json valid with two notes, got %+v", r)
	}

	empty, err := ValidateDir(t.TempDir())
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no results for an empty dir, got %d (err %v)", len(empty), err)
	}
}
