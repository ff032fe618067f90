package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: workspace.base_dir", "value", s.Workspace.BaseDir)
	logger.InfoContext(ctx, "Config: workspace.source_csv", "value", s.Workspace.SourceCSV)
	logger.InfoContext(ctx, "Config: workspace.xml_dir", "value", s.Workspace.XMLDir)
	logger.InfoContext(ctx, "Config: workspace.analysis_dir", "value", s.Workspace.AnalysisDir)
	logger.InfoContext(ctx, "Config: workspace.output_dir", "value", s.Workspace.OutputDir)
	logger.InfoContext(ctx, "Config: workspace.index_dir", "value", s.Workspace.IndexDir)
	logger.InfoContext(ctx, "Config: workspace.curated_file", "value", s.Workspace.CuratedFile)
	logger.InfoContext(ctx, "Config: download.timeout", "value", s.Download.Timeout)
	logger.InfoContext(ctx, "Config: analysis.top_percent", "value", s.Analysis.TopPercent)
	logger.InfoContext(ctx, "Config: analysis.frequent_count", "value", s.Analysis.FrequentCount)
	logger.InfoContext(ctx, "Config: analysis.nonspecific_threshold", "value", s.Analysis.NonspecificThreshold)
	logger.InfoContext(ctx, "Config: search.max_results", "value", s.Search.MaxResults)
}

// SettingsLogValue returns a slog.Value for Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.Any("workspace", slog.GroupValue(
			slog.String("base_dir", s.Workspace.BaseDir),
			slog.String("source_csv", s.Workspace.SourceCSV),
			slog.String("xml_dir", s.Workspace.XMLDir),
			slog.String("analysis_dir", s.Workspace.AnalysisDir),
			slog.String("output_dir", s.Workspace.OutputDir),
			slog.String("index_dir", s.Workspace.IndexDir),
			slog.String("curated_file", s.Workspace.CuratedFile),
		)),
		slog.Duration("download.timeout", s.Download.Timeout),
		slog.Int("analysis.top_percent", s.Analysis.TopPercent),
		slog.Int("analysis.frequent_count", s.Analysis.FrequentCount),
		slog.Int("analysis.nonspecific_threshold", s.Analysis.NonspecificThreshold),
		slog.Int("search.max_results", s.Search.MaxResults),
	)
}
