package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }},
		{"zero file size", func(c *Config) { c.Scan.MaxFileSize = 0 }},
		{"zero depth", func(c *Config) { c.Scan.MaxDepth = 0 }},
		{"zero patterns", func(c *Config) { c.Forensic.MaxPatterns = 0 }},
		{"zero time floor", func(c *Config) { c.Forensic.TimeFloorSeconds = 0 }},
		{"zero goroutines", func(c *Config) { c.Performance.MaxGoroutines = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadKDLMissingFileReturnsNil(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLParsesSections(t *testing.T) {
	root := t.TempDir()
	content := `
project {
    name "shop-backend"
}
scan {
    max_file_size "2MB"
    sync_block_lines 30
}
forensic {
    max_lines 5000
    ms_per_mb 200
}
performance {
    max_goroutines 2
}
exclude {
    "**/generated/**"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".radar.kdl"), []byte(content), 0644))

	cfg, err := LoadKDL(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "shop-backend", cfg.Project.Name)
	assert.Equal(t, int64(2*1024*1024), cfg.Scan.MaxFileSize)
	assert.Equal(t, 30, cfg.Scan.SyncBlockLines)
	assert.Equal(t, 5000, cfg.Forensic.MaxLines)
	assert.Equal(t, 200, cfg.Forensic.MsPerMB)
	assert.Equal(t, 2, cfg.Performance.MaxGoroutines)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Exclude)

	// Root defaults to the directory holding the config file.
	abs, _ := filepath.Abs(root)
	assert.Equal(t, abs, cfg.Project.Root)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"10KB", 10 * 1024},
		{"2MB", 2 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}

func TestDetectBuildGradleWithCatalog(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "build.gradle"), []byte("plugins {}"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gradle"), 0755))
	catalog := `
[libraries]
spring-web = { module = "org.springframework:spring-web", version = "6.1.0" }
reactor = "io.projectreactor:reactor-core:3.6.0"
commons = "org.apache.commons:commons-lang3:3.14.0"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "gradle", "libs.versions.toml"), []byte(catalog), 0644))

	info := DetectBuild(root)
	assert.Equal(t, "gradle", info.System)
	assert.Contains(t, info.OutputPatterns, "**/build/**")
	assert.ElementsMatch(t, []string{"spring", "reactive"}, info.FrameworkHints)
}

func TestDetectBuildMaven(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pom.xml"), []byte("<project/>"), 0644))

	info := DetectBuild(root)
	assert.Equal(t, "maven", info.System)
	assert.Contains(t, info.OutputPatterns, "**/target/**")
}

func TestDetectBuildNone(t *testing.T) {
	info := DetectBuild(t.TempDir())
	assert.Equal(t, "", info.System)
	assert.Empty(t, info.OutputPatterns)
}
