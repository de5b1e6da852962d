package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("KWM_TEST_NAME", "from-env")
	p := writeFile(t, "name: ${KWM_TEST_NAME}\nport: 9000\n")

	var cfg testConfig
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	p := writeFile(t, "name: x\n")
	cfg := testConfig{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Port)
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	p := writeFile(t, "")
	cfg := testConfig{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	p := writeFile(t, "name: x\nprot: 1\n")
	var cfg testConfig
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "prot") {
		t.Errorf("err = %v, want unknown field error", err)
	}
}

func TestLoad_ValidationRuns(t *testing.T) {
	p := writeFile(t, "port: -1\n")
	var cfg testConfig
	if err := Load(p, &cfg); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("err = %v, want validation error", err)
	}
}
