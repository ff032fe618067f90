package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// WorkspaceSettings configuration for the workspace layout
type WorkspaceSettings struct {
	BaseDir     string `mapstructure:"base_dir"`
	SourceCSV   string `mapstructure:"source_csv"`
	XMLDir      string `mapstructure:"xml_dir"`
	AnalysisDir string `mapstructure:"analysis_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	IndexDir    string `mapstructure:"index_dir"`
	CuratedFile string `mapstructure:"curated_file"`
}

// DownloadSettings configuration for the XML download stage
type DownloadSettings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// AnalysisSettings configuration for the statistics reporters
type AnalysisSettings struct {
	TopPercent           int `mapstructure:"top_percent"`
	FrequentCount        int `mapstructure:"frequent_count"`
	NonspecificThreshold int `mapstructure:"nonspecific_threshold"`
}

// SearchSettings configuration for the code search index
type SearchSettings struct {
	MaxResults int `mapstructure:"max_results"`
}

// Settings application settings
type Settings struct {
	Workspace WorkspaceSettings `mapstructure:"workspace"`
	Download  DownloadSettings  `mapstructure:"download"`
	Analysis  AnalysisSettings  `mapstructure:"analysis"`
	Search    SearchSettings    `mapstructure:"search"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("workspace.base_dir", defaultBaseDir())
	v.SetDefault("workspace.source_csv", "in/Code_Lists_GR_SDMX.csv")
	v.SetDefault("workspace.xml_dir", "xml")
	v.SetDefault("workspace.analysis_dir", "analysis")
	v.SetDefault("workspace.output_dir", "cl_out")
	v.SetDefault("workspace.index_dir", "index.bleve")
	v.SetDefault("workspace.curated_file", "curated.yaml")

	v.SetDefault("download.timeout", 10*time.Second)

	v.SetDefault("analysis.top_percent", 10)
	v.SetDefault("analysis.frequent_count", 20)
	v.SetDefault("analysis.nonspecific_threshold", 4)

	v.SetDefault("search.max_results", 20)

	// Environment variables
	v.SetEnvPrefix("SDMXCLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("workspace.base_dir", "SDMXCLGEN_WORKSPACE_BASE_DIR")
	_ = v.BindEnv("workspace.source_csv", "SDMXCLGEN_WORKSPACE_SOURCE_CSV")
	_ = v.BindEnv("workspace.xml_dir", "SDMXCLGEN_WORKSPACE_XML_DIR")
	_ = v.BindEnv("workspace.analysis_dir", "SDMXCLGEN_WORKSPACE_ANALYSIS_DIR")
	_ = v.BindEnv("workspace.output_dir", "SDMXCLGEN_WORKSPACE_OUTPUT_DIR")
	_ = v.BindEnv("workspace.index_dir", "SDMXCLGEN_WORKSPACE_INDEX_DIR")
	_ = v.BindEnv("workspace.curated_file", "SDMXCLGEN_WORKSPACE_CURATED_FILE")
	_ = v.BindEnv("download.timeout", "SDMXCLGEN_DOWNLOAD_TIMEOUT")
	_ = v.BindEnv("analysis.top_percent", "SDMXCLGEN_ANALYSIS_TOP_PERCENT")
	_ = v.BindEnv("analysis.frequent_count", "SDMXCLGEN_ANALYSIS_FREQUENT_COUNT")
	_ = v.BindEnv("analysis.nonspecific_threshold", "SDMXCLGEN_ANALYSIS_NONSPECIFIC_THRESHOLD")
	_ = v.BindEnv("search.max_results", "SDMXCLGEN_SEARCH_MAX_RESULTS")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("workspace.base_dir", flags.Lookup("workspace"))
		_ = v.BindPFlag("workspace.source_csv", flags.Lookup("source-csv"))
		_ = v.BindPFlag("workspace.xml_dir", flags.Lookup("xml-dir"))
		_ = v.BindPFlag("workspace.analysis_dir", flags.Lookup("analysis-dir"))
		_ = v.BindPFlag("workspace.output_dir", flags.Lookup("output-dir"))
		_ = v.BindPFlag("workspace.index_dir", flags.Lookup("index-dir"))
		_ = v.BindPFlag("workspace.curated_file", flags.Lookup("curated-file"))
		_ = v.BindPFlag("download.timeout", flags.Lookup("download-timeout"))
		_ = v.BindPFlag("analysis.top_percent", flags.Lookup("top-percent"))
		_ = v.BindPFlag("analysis.frequent_count", flags.Lookup("frequent-count"))
		_ = v.BindPFlag("analysis.nonspecific_threshold", flags.Lookup("nonspecific-threshold"))
		_ = v.BindPFlag("search.max_results", flags.Lookup("max-results"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	settings.Workspace.BaseDir = expandHomeDir(settings.Workspace.BaseDir)

	return &settings, nil
}

// Resolve returns the given path anchored at the workspace base dir,
// unless it is already absolute.
func (w *WorkspaceSettings) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.BaseDir, path)
}

// defaultBaseDir returns the default workspace directory
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sdmxclgen"
	}
	return filepath.Join(home, ".sdmxclgen")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// ValidateSettings checks for out-of-range or incomplete configuration.
func ValidateSettings(s *Settings) error {
	if s.Workspace.BaseDir == "" {
		return errors.New("workspace base dir cannot be empty")
	}
	if s.Workspace.XMLDir == "" {
		return errors.New("xml dir cannot be empty")
	}
	if s.Workspace.AnalysisDir == "" {
		return errors.New("analysis dir cannot be empty")
	}
	if s.Workspace.OutputDir == "" {
		return errors.New("output dir cannot be empty")
	}
	if s.Workspace.IndexDir == "" {
		return errors.New("index dir cannot be empty")
	}

	if s.Download.Timeout <= 0 {
		return errors.New("download timeout must be positive")
	}

	if s.Analysis.TopPercent < 1 || s.Analysis.TopPercent > 100 {
		return fmt.Errorf("top-percent must be between 1 and 100, got %d", s.Analysis.TopPercent)
	}
	if s.Analysis.FrequentCount <= 0 {
		return errors.New("frequent-count must be positive")
	}
	if s.Analysis.NonspecificThreshold < 0 {
		return errors.New("nonspecific-threshold cannot be negative")
	}

	if s.Search.MaxResults <= 0 {
		return errors.New("max-results must be positive")
	}

	return nil
}
