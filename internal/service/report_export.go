package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
	"github.com/kubev2v/assessment-report-exporter/pkg/metrics"
)

type PDFGenerator interface {
	Generate(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error
}

type HTMLGenerator interface {
	Generate(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) error
}

// VisualTreeBuilder renders an inventory into the visual tree of a PDF export.
type VisualTreeBuilder interface {
	VisualTree(snapshot *inventory.Snapshot, title *string, generatedAt time.Time) (types.VisualTree, error)
}

// ReportExportService is the single place where export failures become results.
// Its methods never panic and never return an error.
type ReportExportService struct {
	pdf  PDFGenerator
	html HTMLGenerator
}

// NewReportExportService accepts nil generators; exports of that kind then fail with
// ErrGeneratorUnavailable.
func NewReportExportService(pdf PDFGenerator, html HTMLGenerator) *ReportExportService {
	return &ReportExportService{pdf: pdf, html: html}
}

func (s *ReportExportService) ExportPDF(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) types.ExportResult {
	return export(ctx, types.ErrorKindPDF, PDFFallbackMessage, func(ctx context.Context) error {
		if s.pdf == nil {
			return NewErrGeneratorUnavailable(types.ErrorKindPDF)
		}
		return s.pdf.Generate(ctx, tree, opts)
	})
}

// ExportInventoryPDF renders snapshot with the HTML generator and exports the result as a PDF.
// It needs an HTML generator that also builds visual trees.
func (s *ReportExportService) ExportInventoryPDF(ctx context.Context, snapshot *inventory.Snapshot, opts types.PDFOptions) types.ExportResult {
	return export(ctx, types.ErrorKindPDF, PDFFallbackMessage, func(ctx context.Context) error {
		builder, ok := s.html.(VisualTreeBuilder)
		if !ok || s.pdf == nil {
			return NewErrGeneratorUnavailable(types.ErrorKindPDF)
		}
		tree, err := builder.VisualTree(snapshot, opts.DocumentTitle, opts.GeneratedAt)
		if err != nil {
			return err
		}
		return s.pdf.Generate(ctx, tree, opts)
	})
}

// PDFAvailable reports whether PDF exports can run.
func (s *ReportExportService) PDFAvailable() bool {
	return s.pdf != nil
}

func (s *ReportExportService) ExportHTML(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) types.ExportResult {
	return export(ctx, types.ErrorKindHTML, HTMLFallbackMessage, func(ctx context.Context) error {
		if s.html == nil {
			return NewErrGeneratorUnavailable(types.ErrorKindHTML)
		}
		return s.html.Generate(ctx, snapshot, opts)
	})
}

func export(ctx context.Context, kind types.ErrorKind, fallback string, fn func(context.Context) error) (result types.ExportResult) {
	logger := zap.S().Named("report_export_service")
	start := time.Now()
	done := metrics.TrackInFlight(string(kind))

	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("export panicked", "kind", kind, "panic", r)
			result = exportFailure(kind, fallback, r)
		}
		done()
		metrics.ObserveExport(string(kind), result.Success, time.Since(start))
	}()

	if err := fn(ctx); err != nil {
		logger.Errorw("export failed", "kind", kind, "error", err)
		return exportFailure(kind, fallback, err)
	}

	logger.Debugw("export completed", "kind", kind, "duration", time.Since(start))
	return types.Succeeded()
}
