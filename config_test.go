package oaiharvest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://repo.test/oai", OutputDir: filepath.Join("out", "Professora Alpia Couto")}
	cfg.SetDefaults()

	assert.Equal(t, "oai_dc", cfg.MetadataPrefix)
	assert.Equal(t, filepath.Join("out", "Professora Alpia Couto.csv"), cfg.CSVPath)
	assert.Equal(t, filepath.Join("out", "Professora Alpia Couto.zip"), cfg.ArchivePath)
	assert.Equal(t, []string{".pdf", ".jpg", ".jpeg", ".png"}, cfg.Extensions)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, RenameNone, cfg.Rename)
	assert.Equal(t, DefaultNamespaces(), cfg.Namespaces)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SetDefaults_KeepsValues(t *testing.T) {
	cfg := Config{
		OutputDir:  "dl",
		CSVPath:    "meta.csv",
		Extensions: []string{".tif"},
		Rename:     RenameFiles,
		Namespaces: Namespaces{DC: "urn:dc"},
	}
	cfg.SetDefaults()
	assert.Equal(t, "meta.csv", cfg.CSVPath)
	assert.Equal(t, "dl.zip", cfg.ArchivePath)
	assert.Equal(t, []string{".tif"}, cfg.Extensions)
	assert.Equal(t, RenameFiles, cfg.Rename)
	assert.Equal(t, "urn:dc", cfg.Namespaces.DC)
	assert.Equal(t, DefaultNamespaces().OAI, cfg.Namespaces.OAI)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.BaseURL = "https://repo.test/oai"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://repo.test/oai" }},
		{"unparsable url", func(c *Config) { c.BaseURL = "http://[::1" }},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }},
		{"missing csv", func(c *Config) { c.CSVPath = "" }},
		{"missing archive", func(c *Config) { c.ArchivePath = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"unknown rename", func(c *Config) { c.Rename = "both" }},
	}
	assert.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfig)
		})
	}
}

func TestRenameMode_Set(t *testing.T) {
	var m RenameMode
	assert.NoError(t, m.Set("files"))
	assert.Equal(t, RenameFiles, m)
	assert.Error(t, m.Set("metadata"))
	assert.Equal(t, "rename-mode", m.Type())
	assert.Equal(t, "files", m.String())
}
