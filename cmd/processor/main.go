// Command processor batch-converts work-order .xlsx files into scored CSV
// reports. Files are parsed concurrently; each file's pipeline run is a
// pure single-threaded computation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"fieldpulse/internal/config"
	"fieldpulse/internal/dataprocessing"
	"fieldpulse/internal/exporter"
	"fieldpulse/internal/infrastructure"
	"fieldpulse/internal/services"
)

func main() {
	inDir := flag.String("in", "", "input directory containing .xlsx files (default: configured data dir)")
	outDir := flag.String("out", "", "output directory for CSV reports (default: configured reports dir)")
	workers := flag.Int("workers", 4, "number of files parsed concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *inDir == "" {
		*inDir = cfg.Paths.DataDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}

	if err := processDir(context.Background(), logger, cfg, *inDir, *outDir, *workers); err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func processDir(ctx context.Context, logger *slog.Logger, cfg *config.Config, inDir, outDir string, workers int) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.EqualFold(filepath.Ext(name), ".xlsx") && !strings.HasPrefix(name, "~$") {
			files = append(files, filepath.Join(inDir, name))
		}
	}
	if len(files) == 0 {
		logger.Info("no workbooks found", slog.String("dir", inDir))
		return nil
	}
	logger.Info("processing workbooks",
		slog.Int("count", len(files)),
		slog.String("in", inDir),
		slog.String("out", outDir))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			return processFile(ctx, logger, cfg, path, outDir)
		})
	}
	return g.Wait()
}

func processFile(ctx context.Context, logger *slog.Logger, cfg *config.Config, path, outDir string) error {
	ds, err := dataprocessing.LoadWorkbookFile(path, dataprocessing.DefaultSynonyms())
	if err != nil {
		return err
	}

	svc := services.NewReportService(logger, nil)
	report, err := svc.Process(ctx, services.ProcessInput{
		Headers:      ds.Headers,
		Rows:         ds.Rows,
		Weights:      cfg.Scoring.Weights(),
		CredibilityK: cfg.Scoring.CredibilityK,
	})
	if err != nil {
		return fmt.Errorf("process %s: %w", filepath.Base(path), err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	installersOut := filepath.Join(outDir, base+"_installers.csv")
	techsOut := filepath.Join(outDir, base+"_technicians.csv")

	if err := exporter.WriteResultsFile(installersOut, report.Installers); err != nil {
		return fmt.Errorf("export %s: %w", installersOut, err)
	}
	if err := exporter.WriteResultsFile(techsOut, report.InstallerTechs); err != nil {
		return fmt.Errorf("export %s: %w", techsOut, err)
	}

	logger.Info("workbook processed",
		slog.String("file", filepath.Base(path)),
		slog.String("sheet", ds.Sheet),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("installers", len(report.Installers)),
		slog.Int("installer_techs", len(report.InstallerTechs)))
	return nil
}
