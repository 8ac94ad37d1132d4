package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"MaxSteps", cfg.MaxSteps, 256},
		{"Prune", cfg.Prune, false},
		{"Output", cfg.Output, OutputText},
		{"CacheEnabled", cfg.CacheEnabled, true},
		{"CacheSize", cfg.CacheSize, 1024},
		{"Workers", cfg.Workers, 4},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !strings.HasSuffix(cfg.CachePath, filepath.Join(".gpx", "cache", "notes.msgpack")) {
		t.Errorf("DefaultConfig().CachePath = %s, want it under .gpx/cache", cfg.CachePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() is invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MaxSteps:     10,
			Output:       OutputJSON,
			CacheEnabled: true,
			CachePath:    "/tmp/notes.msgpack",
			CacheSize:    8,
			Workers:      1,
		}
	}

	tests := []struct {
		name        string
		modify      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name: "cache disabled needs no path",
			modify: func(c *Config) {
				c.CacheEnabled = false
				c.CachePath = ""
				c.CacheSize = 0
			},
		},
		{
			name:        "invalid output",
			modify:      func(c *Config) { c.Output = "xml" },
			wantErr:     true,
			errContains: "invalid output format",
		},
		{
			name:        "negative max steps",
			modify:      func(c *Config) { c.MaxSteps = -1 },
			wantErr:     true,
			errContains: "max_steps must be non-negative",
		},
		{
			name:        "zero workers",
			modify:      func(c *Config) { c.Workers = 0 },
			wantErr:     true,
			errContains: "workers must be positive",
		},
		{
			name:        "missing cache path",
			modify:      func(c *Config) { c.CachePath = "" },
			wantErr:     true,
			errContains: "cache_path is required",
		},
		{
			name:        "zero cache size",
			modify:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errContains: "cache_size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		checkCfg    func(*testing.T, *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "load valid config from file",
			configYAML: `
max_steps: 32
prune: true
output: json
cache_enabled: true
cache_path: /custom/notes.msgpack
cache_size: 50
workers: 2
verbose: true
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.MaxSteps != 32 {
					t.Errorf("MaxSteps = %v, want 32", cfg.MaxSteps)
				}
				if !cfg.Prune {
					t.Error("Prune = false, want true")
				}
				if cfg.Output != OutputJSON {
					t.Errorf("Output = %v, want %v", cfg.Output, OutputJSON)
				}
				if cfg.CachePath != "/custom/notes.msgpack" {
					t.Errorf("CachePath = %v, want /custom/notes.msgpack", cfg.CachePath)
				}
				if cfg.CacheSize != 50 {
					t.Errorf("CacheSize = %v, want 50", cfg.CacheSize)
				}
				if cfg.Workers != 2 {
					t.Errorf("Workers = %v, want 2", cfg.Workers)
				}
				if !cfg.Verbose {
					t.Error("Verbose = false, want true")
				}
			},
		},
		{
			name:       "partial file keeps defaults",
			configYAML: `prune: true`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.MaxSteps != 256 {
					t.Errorf("MaxSteps = %v, want default 256", cfg.MaxSteps)
				}
				if cfg.Output != OutputText {
					t.Errorf("Output = %v, want default %v", cfg.Output, OutputText)
				}
			},
		},
		{
			name:       "env var overrides file values",
			configYAML: "max_steps: 32\noutput: text\n",
			envVars: map[string]string{
				"GPX_MAX_STEPS": "8",
				"GPX_OUTPUT":    "json",
			},
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.MaxSteps != 8 {
					t.Errorf("MaxSteps = %v, want 8 (from env)", cfg.MaxSteps)
				}
				if cfg.Output != OutputJSON {
					t.Errorf("Output = %v, want json (from env)", cfg.Output)
				}
			},
		},
		{
			name: "invalid yaml",
			configYAML: `
max_steps: 3
  invalid: indent
`,
			wantErr:     true,
			errContains: "failed to parse",
		},
		{
			name:        "invalid output in file",
			configYAML:  `output: html`,
			wantErr:     true,
			errContains: "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			cfg, err := LoadFromFile(configPath)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.checkCfg != nil {
				tt.checkCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("LoadFromFile() error = %v, want read failure", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*testing.T, *Config)
	}{
		{
			name:    "override max steps",
			envVars: map[string]string{"GPX_MAX_STEPS": "12"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxSteps != 12 {
					t.Errorf("MaxSteps = %v, want 12", cfg.MaxSteps)
				}
			},
		},
		{
			name:    "zero max steps disables the cap",
			envVars: map[string]string{"GPX_MAX_STEPS": "0"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxSteps != 0 {
					t.Errorf("MaxSteps = %v, want 0", cfg.MaxSteps)
				}
			},
		},
		{
			name:    "invalid number is ignored",
			envVars: map[string]string{"GPX_CACHE_SIZE": "lots", "GPX_WORKERS": "-3"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.CacheSize != 1024 {
					t.Errorf("CacheSize = %v, want default 1024", cfg.CacheSize)
				}
				if cfg.Workers != 4 {
					t.Errorf("Workers = %v, want default 4", cfg.Workers)
				}
			},
		},
		{
			name: "booleans",
			envVars: map[string]string{
				"GPX_PRUNE":         "yes",
				"GPX_CACHE_ENABLED": "false",
				"GPX_VERBOSE":       "1",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Prune {
					t.Error("Prune = false, want true")
				}
				if cfg.CacheEnabled {
					t.Error("CacheEnabled = true, want false")
				}
				if !cfg.Verbose {
					t.Error("Verbose = false, want true")
				}
			},
		},
		{
			name:    "cache path",
			envVars: map[string]string{"GPX_CACHE_PATH": "/var/tmp/gpx.msgpack"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.CachePath != "/var/tmp/gpx.msgpack" {
					t.Errorf("CachePath = %v, want /var/tmp/gpx.msgpack", cfg.CachePath)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	global := &Config{MaxSteps: 10, Output: OutputJSON, Workers: 2, Prune: true}
	if err := global.Save(GlobalConfigFilePath()); err != nil {
		t.Fatalf("Save() global failed: %v", err)
	}
	if err := os.MkdirAll(".gpx", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ProjectConfigFilePath(), []byte("max_steps: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GPX_PRUNE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxSteps != 20 {
		t.Errorf("MaxSteps = %v, want 20 (project overrides global)", cfg.MaxSteps)
	}
	if cfg.Output != OutputJSON {
		t.Errorf("Output = %v, want json (from global)", cfg.Output)
	}
	if cfg.Prune {
		t.Error("Prune = true, want false (env overrides files)")
	}
}

func TestConfigSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dirs", "config.yaml")

	cfg := &Config{
		MaxSteps:     64,
		Prune:        true,
		Output:       OutputJSON,
		CacheEnabled: true,
		CachePath:    "/tmp/gpx/notes.msgpack",
		CacheSize:    16,
		Workers:      3,
	}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", *loaded, *cfg)
	}
}
