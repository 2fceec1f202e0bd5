package chrome

import (
	"bytes"
	"context"
	goerrors "errors"
	"image"
	"image/png"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/pdf"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

// Container is an off-screen div attached to the body of a dedicated tab.
type Container struct {
	id     string
	tabCtx context.Context
	cancel context.CancelFunc
}

var _ pdf.Container = &Container{}

func (c *Container) ID() string {
	return c.id
}

// run executes actions on the tab. Cancelling ctx aborts the actions but leaves the tab open.
func (c *Container) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (c *Container) eval(ctx context.Context, script string, res any, args ...any) error {
	expr, err := call(script, args...)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.Evaluate(expr, res, awaitPromise))
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (c *Container) Attached(ctx context.Context) (bool, error) {
	var attached bool
	if err := c.eval(ctx, attachedScript, &attached, c.id); err != nil {
		return false, errors.Wrap(err, "failed to look up container")
	}
	return attached, nil
}

func (c *Container) Mount(ctx context.Context, tree types.VisualTree) error {
	stylesheets := tree.Stylesheets
	if stylesheets == nil {
		stylesheets = []string{}
	}
	scripts := tree.Scripts
	if scripts == nil {
		scripts = []string{}
	}

	var mounted bool
	if err := c.eval(ctx, mountScript, &mounted, c.id, tree.HTML, stylesheets, scripts); err != nil {
		return errors.Wrap(err, "failed to mount tree")
	}
	if !mounted {
		return pdf.NewErrHiddenContainerMissing(c.id)
	}
	return nil
}

func (c *Container) NextFrame(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, nextFrameScript, &ok)
}

func (c *Container) FontsReady(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, fontsReadyScript, &ok)
}

func (c *Container) SettleImages(ctx context.Context) (pdf.ImageSettlement, error) {
	var settled pdf.ImageSettlement
	if err := c.eval(ctx, settleImagesScript, &settled, c.id); err != nil {
		return pdf.ImageSettlement{}, err
	}
	return settled, nil
}

func (c *Container) InjectStyles(ctx context.Context, css string) error {
	var ok bool
	return c.eval(ctx, injectStylesScript, &ok, c.id, css)
}

type measured[T any] struct {
	Missing bool `json:"missing"`
	Items   []T  `json:"items"`
}

func (c *Container) Boundaries(ctx context.Context, selector string) ([]pdf.Boundary, error) {
	var result measured[pdf.Boundary]
	if err := c.eval(ctx, boundariesScript, &result, c.id, selector); err != nil {
		return nil, err
	}
	if result.Missing {
		return nil, pdf.NewErrHiddenContainerMissing(c.id)
	}
	return result.Items, nil
}

func (c *Container) Segments(ctx context.Context) ([]pdf.Segment, error) {
	var result measured[pdf.Segment]
	if err := c.eval(ctx, segmentsScript, &result, c.id); err != nil {
		return nil, err
	}
	if result.Missing {
		return nil, pdf.NewErrHiddenContainerMissing(c.id)
	}
	return result.Items, nil
}

func (c *Container) CSSWidth(ctx context.Context) (float64, error) {
	var width float64
	if err := c.eval(ctx, cssWidthScript, &width, c.id); err != nil {
		return 0, err
	}
	if width < 0 {
		return 0, pdf.NewErrHiddenContainerMissing(c.id)
	}
	return width, nil
}

func (c *Container) SuppressConsoleWarnings(ctx context.Context) (func(context.Context) error, error) {
	var ok bool
	if err := c.eval(ctx, suppressConsoleScript, &ok, c.id); err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		var ok bool
		return c.eval(ctx, restoreConsoleScript, &ok, c.id)
	}, nil
}

type clip struct {
	Missing bool    `json:"missing"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Rasterize moves the container into view, captures it beyond the viewport and moves it back.
func (c *Container) Rasterize(ctx context.Context) (image.Image, error) {
	var area clip
	if err := c.eval(ctx, revealScript, &area, c.id); err != nil {
		return nil, errors.Wrap(err, "failed to reveal container")
	}
	if area.Missing {
		return nil, pdf.NewErrHiddenContainerMissing(c.id)
	}
	defer c.conceal(context.WithoutCancel(ctx))

	if area.Width <= 0 || area.Height <= 0 {
		return nil, pdf.NewErrCanvasContextUnavailable("container has no area")
	}

	var shot []byte
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		shot, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithCaptureBeyondViewport(true).
			WithFromSurface(true).
			WithClip(&page.Viewport{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height, Scale: 1}).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to capture screenshot")
	}

	bitmap, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, pdf.NewErrCanvasContextUnavailable(err.Error())
	}
	return bitmap, nil
}

// conceal moves the container back off-screen after a capture.
func (c *Container) conceal(ctx context.Context) {
	var ok bool
	if err := c.eval(ctx, concealScript, &ok, c.id); err != nil {
		zap.S().Named("chrome_surface").Warnw("failed to move container off-screen", "container", c.id, "error", err)
	}
}

// Teardown removes every node the export added, puts console.warn back and closes the tab.
func (c *Container) Teardown(ctx context.Context) error {
	var ok bool
	var errs []error
	if err := c.eval(ctx, teardownScript, &ok, c.id); err != nil {
		errs = append(errs, errors.Wrapf(err, "failed to remove container %s", c.id))
	}
	if err := c.eval(ctx, restoreConsoleScript, &ok, c.id); err != nil {
		errs = append(errs, errors.Wrap(err, "failed to restore console"))
	}
	c.cancel()

	return goerrors.Join(errs...)
}
