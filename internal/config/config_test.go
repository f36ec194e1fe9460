package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServerName != "pdf-field-mapper" {
		t.Errorf("Expected default server name to be 'pdf-field-mapper', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if len(cfg.AnchorPhrases) == 0 {
		t.Error("Expected default anchor phrases to be set")
	}

	if len(cfg.PageOffsets) != 4 {
		t.Errorf("Expected 4 default page offsets, got %d", len(cfg.PageOffsets))
	}

	if cfg.RowTolerance != DefaultRowTolerance {
		t.Errorf("Expected default row tolerance to be %v, got %v", DefaultRowTolerance, cfg.RowTolerance)
	}

	// Document directory defaults to the current working directory
	currentDir, _ := os.Getwd()
	if cfg.DocumentDirectory != currentDir {
		t.Errorf("Expected default document directory to be '%s', got '%s'", currentDir, cfg.DocumentDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	validConfig := func() *Config {
		return &Config{
			Mode:              "stdio",
			Host:              "127.0.0.1",
			Port:              8080,
			DocumentDirectory: tempDir,
			LogLevel:          "info",
			MaxFileSize:       1024,
			AnchorPhrases:     []string{"Name"},
			PageOffsets:       []int{1, -1},
			RowTolerance:      5.0,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config - stdio mode",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "valid config - server mode",
			mutate:  func(c *Config) { c.Mode = "server" },
			wantErr: false,
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "invalid" },
			wantErr: true,
		},
		{
			name: "invalid port in server mode",
			mutate: func(c *Config) {
				c.Mode = "server"
				c.Port = 0
			},
			wantErr: true,
		},
		{
			name: "port ignored in stdio mode",
			mutate: func(c *Config) {
				c.Port = 0
			},
			wantErr: false,
		},
		{
			name:    "empty document directory",
			mutate:  func(c *Config) { c.DocumentDirectory = "" },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "no anchor phrases",
			mutate:  func(c *Config) { c.AnchorPhrases = nil },
			wantErr: true,
		},
		{
			name:    "non-positive row tolerance",
			mutate:  func(c *Config) { c.RowTolerance = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_CreatesMissingDirectory(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := DefaultConfig()
	cfg.DocumentDirectory = filepath.Join(tempDir, "documents")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(cfg.DocumentDirectory); err != nil {
		t.Errorf("expected document directory to be created: %v", err)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := &Config{Mode: "server", Host: "0.0.0.0", Port: 9090, LogLevel: "debug"}

	if got := cfg.Address(); got != "0.0.0.0:9090" {
		t.Errorf("Expected address '0.0.0.0:9090', got '%s'", got)
	}

	if !cfg.IsServerMode() {
		t.Error("Expected IsServerMode to be true")
	}
	if cfg.IsStdioMode() {
		t.Error("Expected IsStdioMode to be false")
	}
	if !cfg.IsDebug() {
		t.Error("Expected IsDebug to be true")
	}

	cfg.Mode = "stdio"
	cfg.LogLevel = "info"
	if cfg.IsServerMode() {
		t.Error("Expected IsServerMode to be false")
	}
	if !cfg.IsStdioMode() {
		t.Error("Expected IsStdioMode to be true")
	}
	if cfg.IsDebug() {
		t.Error("Expected IsDebug to be false")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()
	if s == "" {
		t.Error("Expected non-empty string representation")
	}
}
