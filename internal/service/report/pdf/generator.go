package pdf

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

// DefaultTitle is printed on the cover page when no title is supplied.
const DefaultTitle = "Dashboard Report"

type Config struct {
	ContainerWidth  int `validate:"gt=0"`
	ContainerHeight int `validate:"gt=0"`
	Slicing         SliceConfig
}

func DefaultConfig() Config {
	return Config{
		ContainerWidth:  ContainerWidth,
		ContainerHeight: ContainerHeight,
		Slicing:         DefaultSliceConfig(),
	}
}

// Generator renders a visual tree off-screen, rasterizes it and saves it as a paginated PDF.
// Every call works on its own container; generators hold no per-export state.
type Generator struct {
	surface Surface
	saver   download.Saver
	cfg     Config
	now     func() time.Time
}

func NewGenerator(surface Surface, saver download.Saver, cfg Config) (*Generator, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid pdf export configuration: %w", err)
	}
	return &Generator{
		surface: surface,
		saver:   saver,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// capture is what a container yields once the tree has been laid out and rasterized.
type capture struct {
	bitmap     image.Image
	boundaries []Boundary
	segments   []Segment
	cssWidth   float64
}

// Generate exports tree as a PDF. The container is torn down on every exit path.
func (g *Generator) Generate(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error {
	logger := zap.S().Named("pdf_generator")
	run := newExportRun(logger)
	defer run.finish()

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = g.now()
	}

	var shot capture
	err := withContainer(ctx, g.surface, ContainerSpec{Width: g.cfg.ContainerWidth, Height: g.cfg.ContainerHeight}, run,
		func(ctx context.Context, c Container) error {
			var err error
			shot, err = g.render(ctx, c, tree, run)
			return err
		})
	if err != nil {
		return err
	}

	title := DefaultTitle
	if opts.DocumentTitle != nil && *opts.DocumentTitle != "" {
		title = *opts.DocumentTitle
	}

	data, err := g.assemble(title, generatedAt, shot)
	if err != nil {
		return err
	}
	run.advance(StatePdfAssembled)

	filename := Filename(opts.DocumentTitle)
	if err := download.FromContext(ctx, g.saver).Save(ctx, filename, types.MimeTypePDF, data); err != nil {
		return err
	}

	logger.Infow("pdf report saved", "filename", filename, "size", len(data))
	return nil
}

func (g *Generator) render(ctx context.Context, c Container, tree types.VisualTree, run *exportRun) (capture, error) {
	if err := c.Mount(ctx, tree); err != nil {
		return capture{}, fmt.Errorf("failed to mount visual tree: %w", err)
	}
	run.advance(StateComponentMounted)

	if err := WaitForRender(ctx, c, c, c); err != nil {
		return capture{}, err
	}

	if err := c.InjectStyles(ctx, PrintStyles(c.ID())); err != nil {
		return capture{}, fmt.Errorf("failed to inject print styles: %w", err)
	}
	run.advance(StateStylesInjected)

	boundaries, err := c.Boundaries(ctx, BlockSelector)
	if err != nil {
		return capture{}, fmt.Errorf("failed to collect block boundaries: %w", err)
	}
	segments, err := c.Segments(ctx)
	if err != nil {
		return capture{}, fmt.Errorf("failed to collect segments: %w", err)
	}
	cssWidth, err := c.CSSWidth(ctx)
	if err != nil {
		return capture{}, fmt.Errorf("failed to measure container: %w", err)
	}
	run.advance(StateBoundariesCollected)

	bitmap, err := rasterize(ctx, c)
	if err != nil {
		return capture{}, err
	}
	run.advance(StateRastered)

	return capture{
		bitmap:     bitmap,
		boundaries: NormalizeBoundaries(boundaries, g.cfg.Slicing.MinBlockHeight),
		segments:   segments,
		cssWidth:   cssWidth,
	}, nil
}

// rasterize captures the container with console warnings silenced. The console hook is
// restored on every exit path.
func rasterize(ctx context.Context, c Container) (image.Image, error) {
	restore, err := c.SuppressConsoleWarnings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to patch console: %w", err)
	}
	defer func() {
		if rerr := restore(context.WithoutCancel(ctx)); rerr != nil {
			zap.S().Named("pdf_generator").Warnw("failed to restore console warnings", "container", c.ID(), "error", rerr)
		}
	}()

	bitmap, err := c.Rasterize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize container: %w", err)
	}
	return bitmap, nil
}

func (g *Generator) assemble(title string, generatedAt time.Time, shot capture) ([]byte, error) {
	if shot.bitmap == nil || shot.bitmap.Bounds().Empty() {
		return nil, NewErrCanvasContextUnavailable(errEmptyBitmap.Error())
	}
	bounds := shot.bitmap.Bounds()
	geometry := NewPageGeometry(bounds.Dx())

	scale := 1.0
	if shot.cssWidth > 0 {
		scale = float64(bounds.Dx()) / shot.cssWidth
	}

	slices := g.plan(shot, scale, bounds.Dy(), geometry.PageHeightPx)
	zap.S().Named("pdf_generator").Debugw("slices planned", "count", len(slices), "named", HasNamedSegments(shot.segments),
		"bitmapWidth", bounds.Dx(), "bitmapHeight", bounds.Dy(), "pageHeightPx", geometry.PageHeightPx)

	a := &assembler{geometry: geometry}
	return a.assemble(title, generatedAt, shot.bitmap, slices)
}

// plan picks the named-segment strategy when the three tagged regions exist, the generic one otherwise.
func (g *Generator) plan(shot capture, scale float64, bitmapHeight, pageHeight int) []Slice {
	if HasNamedSegments(shot.segments) {
		if slices := NamedSegmentSlices(shot.segments, scale, g.cfg.Slicing.SegmentGuard, bitmapHeight); len(slices) > 0 {
			return slices
		}
	}
	blocks := ScaleBoundaries(shot.boundaries, scale)
	return GenericSlices(bitmapHeight, pageHeight, blocks, g.cfg.Slicing)
}

// withContainer creates a container, checks it is attached and runs fn with it. The container is
// torn down on every exit path, including panics.
func withContainer(ctx context.Context, surface Surface, spec ContainerSpec, run *exportRun, fn func(context.Context, Container) error) (err error) {
	c, err := surface.CreateContainer(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to create off-screen container: %w", err)
	}
	run.advance(StateContainerCreated)

	defer func() {
		if terr := c.Teardown(context.WithoutCancel(ctx)); terr != nil {
			zap.S().Named("pdf_generator").Warnw("failed to tear down container", "container", c.ID(), "error", terr)
			if err == nil {
				err = terr
			}
		}
	}()

	attached, err := c.Attached(ctx)
	if err != nil {
		return err
	}
	if !attached {
		return NewErrHiddenContainerMissing(c.ID())
	}

	return fn(ctx, c)
}
