package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/semrd/sdmxclgen/internal/analysis"
	"github.com/semrd/sdmxclgen/internal/config"
	"github.com/semrd/sdmxclgen/internal/curated"
	"github.com/semrd/sdmxclgen/internal/domain"
	"github.com/semrd/sdmxclgen/internal/download"
	"github.com/semrd/sdmxclgen/internal/rdf"
	"github.com/semrd/sdmxclgen/internal/report"
	"github.com/semrd/sdmxclgen/internal/search"
	"github.com/semrd/sdmxclgen/internal/sdmx"
	"github.com/semrd/sdmxclgen/internal/workspace"
)

// Analysis output file names, written under the analysis dir.
const (
	SummaryTableFile  = "all_cl_table.csv"
	CodeTableFile     = "all_cl_data.csv"
	FilteredTableFile = "filtered_cl_table.csv"
	FilteredDataFile  = "filtered_cl_data.csv"
	AgencyLabelFile   = "codelists_with_hasAgencyLabel.csv"
)

// RunPipeline executes the selected stages against the configured
// workspace. The workspace is locked for the duration of the run.
func RunPipeline(ctx context.Context, settings *config.Settings, stages Stages) error {
	lock := workspace.NewLock(settings.Workspace.BaseDir)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Error("Failed to release workspace lock", "error", err)
		}
	}()

	ws := &settings.Workspace
	xmlDir := ws.Resolve(ws.XMLDir)

	if stages.Download {
		if err := runDownload(ctx, settings, xmlDir); err != nil {
			return err
		}
	}

	if !stages.Analyze && !stages.Generate && !stages.Index {
		return nil
	}

	codelists, err := loadCodelists(xmlDir)
	if err != nil {
		return err
	}
	if len(codelists) == 0 {
		return fmt.Errorf("no codelists parsed from %s", xmlDir)
	}

	printSimilarGroups(analysis.ComputeSimilar(codelists))
	tables := analysis.BuildTables(codelists)

	analysisDir := ws.Resolve(ws.AnalysisDir)
	if err := os.MkdirAll(analysisDir, 0755); err != nil {
		return fmt.Errorf("failed to create analysis directory: %w", err)
	}

	if stages.Analyze {
		if err := runAnalysis(settings, codelists, tables, analysisDir); err != nil {
			return err
		}
	}

	if stages.Generate {
		if err := runGenerate(settings, tables, analysisDir); err != nil {
			return err
		}
	}

	if stages.Index {
		if err := runIndex(settings, tables.Codes); err != nil {
			return err
		}
	}

	return nil
}

func runDownload(ctx context.Context, settings *config.Settings, xmlDir string) error {
	ws := &settings.Workspace
	sources, err := download.ReadSources(ws.Resolve(ws.SourceCSV))
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(xmlDir, download.ManifestFilename)
	manifest, err := download.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	d := download.NewDownloader(xmlDir, settings.Download.Timeout)
	if _, err := d.Run(ctx, sources, manifest); err != nil {
		return err
	}
	return manifest.Save(manifestPath)
}

func runAnalysis(settings *config.Settings, codelists []*domain.Codelist, tables *analysis.Tables, analysisDir string) error {
	if err := analysis.ReportStatistics(tables, analysis.StatParams{
		TopPercent:           settings.Analysis.TopPercent,
		FrequentCount:        settings.Analysis.FrequentCount,
		NonspecificThreshold: settings.Analysis.NonspecificThreshold,
	}); err != nil {
		return err
	}

	curatedTables, err := curated.Load(settings.Workspace.Resolve(settings.Workspace.CuratedFile))
	if err != nil {
		return err
	}

	engine := analysis.NewEngine(curatedTables)
	result := engine.Classify(codelists, tables)
	printExclusions(result)

	if len(result.Active) > 0 {
		if err := analysis.ReportStatistics(result.Filtered, analysis.FilteredStatParams(len(result.Active))); err != nil {
			return err
		}
		total, singletons, ratio := analysis.CodeUniquenessRatio(result.Filtered.Universe)
		fmt.Printf("Total codes - %d, non-repeated - %d (%d%%)\n", total, singletons, int(ratio*100))
	} else {
		fmt.Println("All codelists labeled")
	}

	if err := report.WriteSummary(filepath.Join(analysisDir, SummaryTableFile), tables); err != nil {
		return err
	}
	if err := report.WriteCodes(filepath.Join(analysisDir, CodeTableFile), tables.Codes); err != nil {
		return err
	}
	if err := report.WriteSummary(filepath.Join(analysisDir, FilteredTableFile), result.Filtered); err != nil {
		return err
	}
	if err := report.WriteCodes(filepath.Join(analysisDir, FilteredDataFile), result.Filtered.Codes); err != nil {
		return err
	}
	report.LogMissingValues(tables)

	groups := analysis.GroupStatistics(tables)
	slog.Info("Group membership", "groups", groups.PerGroup)
	fmt.Printf("Codelists grouped (%d) into groups (%d), number of single codelists - %d\n",
		groups.Grouped, groups.Groups, groups.Singles)

	return nil
}

func runGenerate(settings *config.Settings, tables *analysis.Tables, analysisDir string) error {
	outDir := settings.Workspace.Resolve(settings.Workspace.OutputDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	gen := &rdf.Generator{OutDir: outDir}
	files, err := gen.Generate(tables)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Warn("No classified schemes to generate; run with --analyze first")
	}

	paths := make([]string, 0, len(files)+1)
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	paths = append(paths, filepath.Join(outDir, rdf.CatalogFileName))
	for _, path := range paths {
		quality, err := rdf.CheckQuality(path)
		if err != nil {
			return err
		}
		quality.Log(path)
	}

	return rdf.WriteAgencyLabelIndex(filepath.Join(analysisDir, AgencyLabelFile), files)
}

func runIndex(settings *config.Settings, codes []domain.CodeEntry) error {
	indexer := search.NewIndexer(settings.Workspace.Resolve(settings.Workspace.IndexDir))
	if indexer.IndexExists() {
		if err := indexer.DeleteIndex(); err != nil {
			return fmt.Errorf("failed to delete stale index: %w", err)
		}
	}

	count, err := indexer.IndexCodes(codes)
	if err != nil {
		return err
	}
	slog.Info("Code index built", "documents", count)
	return nil
}

// loadCodelists parses every XML file in dir, in sorted filename order
// so repeated runs see the same processing order. Files that fail to
// parse, yield no usable codelist, or repeat an already-loaded id are
// logged and skipped.
func loadCodelists(dir string) ([]*domain.Codelist, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(paths)

	var codelists []*domain.Codelist
	seen := make(map[string]string)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open codelist file", "file", path, "error", err)
			continue
		}
		cl, err := sdmx.ParseCodelist(f, path)
		f.Close()
		if err != nil {
			slog.Error("Failed to parse codelist file", "file", path, "error", err)
			continue
		}
		if cl.ID == sdmx.UnknownID || len(cl.Codes) == 0 {
			slog.Warn("Skipping codelist without usable content", "file", path, "codelist", cl.ID)
			continue
		}
		if first, dup := seen[cl.ID]; dup {
			slog.Warn("Duplicate codelist id; keeping the first occurrence",
				"codelist", cl.ID, "file", path, "first", first)
			continue
		}
		seen[cl.ID] = path
		codelists = append(codelists, cl)
	}

	slog.Info("Codelists loaded", "files", len(paths), "parsed", len(codelists))
	return codelists, nil
}

func printSimilarGroups(groups [][]string) {
	if len(groups) == 0 {
		return
	}
	fmt.Println("Similar CL lists:")
	for i, group := range groups {
		fmt.Printf("%d. %v\n", i+1, group)
	}
}

func printExclusions(result *analysis.Result) {
	if len(result.AutoExcluded) > 0 {
		fmt.Printf("Automatically excluded codelists with unique codes (%d):\n", len(result.AutoExcluded))
		for _, id := range result.AutoExcluded {
			fmt.Println(id)
		}
	}
	fmt.Printf("Total excluded codelists - (%d)\n", len(result.Excluded))
}
