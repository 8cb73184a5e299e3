// Package services wires the data-processing and scoring stages into the
// report pipeline consumed by the HTTP and CLI frontends.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldpulse/internal/dataprocessing"
	"fieldpulse/internal/metrics"
	"fieldpulse/internal/scoring"
	"fieldpulse/pkg/contracts/domain"
)

// MissingColumnsError is the configuration-class failure raised when a
// dataset's headers do not resolve every essential semantic column.
// Processing halts before aggregation; the full missing list is preserved.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset is missing essential columns: %s", strings.Join(e.Missing, ", "))
}

// ProcessInput is the complete input of one pipeline run. Two runs with
// equal inputs produce identical reports, which makes the last run safe to
// memoize.
type ProcessInput struct {
	Headers      []string
	Rows         []dataprocessing.RawRow
	Filters      domain.Filters
	Weights      domain.Weights
	CredibilityK float64
}

// ReportService runs the scoring pipeline and retains the latest report.
type ReportService struct {
	logger   *slog.Logger
	synonyms dataprocessing.SynonymTable
	metrics  *metrics.Pipeline

	mu              sync.RWMutex
	last            *domain.Report
	lastFingerprint string
}

// NewReportService creates a report service. A nil metrics pipeline
// disables instrumentation.
func NewReportService(logger *slog.Logger, m *metrics.Pipeline) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:   logger,
		synonyms: dataprocessing.DefaultSynonyms(),
		metrics:  m,
	}
}

// Process runs the full pipeline: column resolution, row classification,
// the two-level aggregation, scoring, and KPI summarization. A rerun with
// an identical input fingerprint returns the memoized previous report.
func (s *ReportService) Process(ctx context.Context, in ProcessInput) (*domain.Report, error) {
	start := time.Now()
	fp := fingerprint(in)

	s.mu.RLock()
	if s.last != nil && s.lastFingerprint == fp {
		cached := s.last
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.logger.InfoContext(ctx, "report served from cache",
			slog.String("report_id", cached.ID))
		return cached, nil
	}
	s.mu.RUnlock()

	cols := dataprocessing.BuildColumnMap(in.Headers, s.synonyms)
	if check := dataprocessing.CheckEssential(cols); !check.OK {
		if s.metrics != nil {
			s.metrics.DatasetsRejected.Inc()
		}
		s.logger.WarnContext(ctx, "dataset rejected",
			slog.Any("missing_columns", check.Missing))
		return nil, &MissingColumnsError{Missing: check.Missing}
	}

	classified := dataprocessing.ClassifyAll(in.Rows, cols, in.Filters)

	installers, installerTechs := scoring.Aggregate(classified)
	installers = scoring.ComputeScores(installers, in.Weights, in.CredibilityK)
	installerTechs = scoring.ComputeScores(installerTechs, in.Weights, in.CredibilityK)

	report := &domain.Report{
		ID:             uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		Installers:     installers,
		InstallerTechs: installerTechs,
	}
	report.InstallerKpi = scoring.Summarize(installers)
	report.TechKpi = scoring.Summarize(installerTechs)
	report.Children = scoring.BuildChildrenMap(installers, installerTechs)

	s.mu.Lock()
	s.last = report
	s.lastFingerprint = fp
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveRun(start, len(in.Rows), len(classified))
	}
	s.logger.InfoContext(ctx, "report generated",
		slog.String("report_id", report.ID),
		slog.Int("rows_in", len(in.Rows)),
		slog.Int("rows_kept", len(classified)),
		slog.Int("installers", len(installers)),
		slog.Int("installer_techs", len(installerTechs)),
		slog.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// Latest returns the most recently generated report, or nil when none has
// been produced yet.
func (s *ReportService) Latest(ctx context.Context) *domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// fingerprint derives a stable digest of a pipeline input. Row maps
// serialize with sorted keys, so equal inputs always collide.
func fingerprint(in ProcessInput) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(in.Headers)
	_ = enc.Encode(in.Rows)
	_ = enc.Encode(in.Filters)
	_ = enc.Encode(in.Weights)
	_ = enc.Encode(in.CredibilityK)
	return hex.EncodeToString(h.Sum(nil))
}
