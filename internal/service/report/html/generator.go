package html

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

// DefaultFilename is used when the caller does not name the exported document.
const DefaultFilename = "VMware_Infrastructure_Assessment_Comprehensive.html"

type ErrNoInventoryData struct {
	error
}

func NewErrNoInventoryData() *ErrNoInventoryData {
	return &ErrNoInventoryData{errors.New("No inventory data available for export")}
}

// Generator turns an inventory snapshot into a saved HTML report.
type Generator struct {
	transformer *report.ChartDataTransformer
	builder     *Builder
	saver       download.Saver
	now         func() time.Time
}

func NewGenerator(saver download.Saver) *Generator {
	return &Generator{
		transformer: report.NewChartDataTransformer(),
		builder:     NewBuilder(),
		saver:       saver,
		now:         time.Now,
	}
}

// Generate builds the report for snapshot and saves it. Nothing is saved on failure.
func (g *Generator) Generate(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) error {
	logger := zap.S().Named("html_generator")

	document, err := g.Render(snapshot, opts.DocumentTitle, g.timestamp(opts.GeneratedAt))
	if err != nil {
		return err
	}

	filename := opts.Filename
	if filename == "" {
		filename = DefaultFilename
	}

	if err := download.FromContext(ctx, g.saver).Save(ctx, filename, types.MimeTypeHTML, []byte(document)); err != nil {
		return err
	}

	logger.Infow("html report saved", "filename", filename, "size", len(document))
	return nil
}

// Render returns the report document for snapshot without saving it.
func (g *Generator) Render(snapshot *inventory.Snapshot, title *string, generatedAt time.Time) (string, error) {
	if snapshot == nil {
		return "", NewErrNoInventoryData()
	}

	zap.S().Named("html_generator").Debugw("rendering html report", "shape", inventory.DetectShape(snapshot))

	inv, err := inventory.Normalize(snapshot)
	if err != nil {
		return "", err
	}

	return g.builder.Build(g.transformer.TransformNormalized(inv), inv, generatedAt, title)
}

// VisualTree renders the report as the visual tree mounted by the PDF generator.
func (g *Generator) VisualTree(snapshot *inventory.Snapshot, title *string, generatedAt time.Time) (types.VisualTree, error) {
	document, err := g.Render(snapshot, title, g.timestamp(generatedAt))
	if err != nil {
		return types.VisualTree{}, err
	}

	return types.VisualTree{HTML: document}, nil
}

func (g *Generator) timestamp(at time.Time) time.Time {
	if at.IsZero() {
		return g.now()
	}
	return at
}
