// Build artifact detection for Java projects.
// Reads Maven and Gradle build files to find output directories and to
// collect framework hints from the Gradle version catalog.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildInfo describes the build system detected under a project root.
type BuildInfo struct {
	System          string   // "maven", "gradle" or ""
	OutputPatterns  []string // glob patterns for build outputs
	FrameworkHints  []string // framework coordinates seen in the version catalog
	MultiModule     bool
	VersionCatalogs []string
}

// DetectBuild inspects a project root for Maven/Gradle markers.
func DetectBuild(projectRoot string) *BuildInfo {
	info := &BuildInfo{}

	if _, err := os.Stat(filepath.Join(projectRoot, "pom.xml")); err == nil {
		info.System = "maven"
		info.OutputPatterns = append(info.OutputPatterns, "**/target/**")
	}

	for _, gradle := range []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(projectRoot, gradle)); err == nil {
			info.System = "gradle"
			info.OutputPatterns = append(info.OutputPatterns, "**/build/**", "**/.gradle/**")
			break
		}
	}

	if data, err := os.ReadFile(filepath.Join(projectRoot, "settings.gradle")); err == nil {
		info.MultiModule = strings.Contains(string(data), "include")
	} else if data, err := os.ReadFile(filepath.Join(projectRoot, "settings.gradle.kts")); err == nil {
		info.MultiModule = strings.Contains(string(data), "include")
	}

	catalog := filepath.Join(projectRoot, "gradle", "libs.versions.toml")
	if hints := parseVersionCatalog(catalog); hints != nil {
		info.VersionCatalogs = append(info.VersionCatalogs, catalog)
		info.FrameworkHints = hints
	}

	return info
}

// parseVersionCatalog extracts library coordinates from a Gradle version
// catalog. Returns nil when the file is absent or unparsable.
func parseVersionCatalog(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var catalog struct {
		Libraries map[string]any `toml:"libraries"`
	}
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil
	}

	var hints []string
	for _, lib := range catalog.Libraries {
		switch v := lib.(type) {
		case string:
			hints = append(hints, coordinateHint(v))
		case map[string]any:
			if module, ok := v["module"].(string); ok {
				hints = append(hints, coordinateHint(module))
			} else if group, ok := v["group"].(string); ok {
				hints = append(hints, coordinateHint(group))
			}
		}
	}

	// Keep only the hints that matter for detector tuning.
	var filtered []string
	for _, h := range hints {
		if h != "" {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// coordinateHint maps a Maven coordinate to a framework label.
func coordinateHint(coordinate string) string {
	c := strings.ToLower(coordinate)
	switch {
	case strings.Contains(c, "reactor") || strings.Contains(c, "rxjava"):
		return "reactive"
	case strings.Contains(c, "spring"):
		return "spring"
	case strings.Contains(c, "hibernate") || strings.Contains(c, "mybatis") || strings.Contains(c, "jpa"):
		return "orm"
	case strings.Contains(c, "netty") || strings.Contains(c, "vertx"):
		return "async-io"
	default:
		return ""
	}
}
