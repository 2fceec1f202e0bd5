package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/pdf"
)

// Options configures the headless browser backing the surface.
type Options struct {
	// ExecPath overrides the browser binary. Empty means chromedp's lookup.
	ExecPath         string
	Headless         bool
	NoSandbox        bool
	StartupAttempts  uint
	StartupDelay     time.Duration
	WSURLReadTimeout time.Duration
	// DeviceScaleFactor multiplies the resolution of the rasterized bitmap.
	DeviceScaleFactor float64
}

func DefaultOptions() Options {
	return Options{
		Headless:          true,
		NoSandbox:         true,
		StartupAttempts:   3,
		StartupDelay:      time.Second,
		WSURLReadTimeout:  60 * time.Second,
		DeviceScaleFactor: 2,
	}
}

// Surface is a headless browser. Every container lives in its own tab so concurrent
// exports never share a document.
type Surface struct {
	opts          Options
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closeOnce     sync.Once
}

var _ pdf.Surface = &Surface{}

// NewSurface starts the browser. It lives until Close is called or ctx is done.
func NewSurface(ctx context.Context, opts Options) (*Surface, error) {
	logger := zap.S().Named("chrome_surface")

	if opts.StartupAttempts == 0 {
		opts.StartupAttempts = 1
	}
	if opts.DeviceScaleFactor <= 0 {
		opts.DeviceScaleFactor = 1
	}

	var surface *Surface
	err := retry.Do(
		func() error {
			allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
			browserCtx, browserCancel := chromedp.NewContext(allocCtx,
				chromedp.WithLogf(logger.Debugf),
				chromedp.WithErrorf(logger.Debugf),
			)
			// the first run launches the browser process
			if err := chromedp.Run(browserCtx); err != nil {
				browserCancel()
				allocCancel()
				return errors.Wrap(err, "failed to start browser")
			}
			surface = &Surface{
				opts:          opts,
				allocCancel:   allocCancel,
				browserCtx:    browserCtx,
				browserCancel: browserCancel,
			}
			return nil
		},
		retry.Attempts(opts.StartupAttempts),
		retry.Delay(opts.StartupDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnw("browser startup failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Infow("browser started", "execPath", opts.ExecPath, "headless", opts.Headless)
	return surface, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.WSURLReadTimeout > 0 {
		allocOpts = append(allocOpts, chromedp.WSURLReadTimeout(opts.WSURLReadTimeout))
	}
	return allocOpts
}

// CreateContainer opens a tab and attaches an off-screen container to its body.
func (s *Surface) CreateContainer(ctx context.Context, spec pdf.ContainerSpec) (pdf.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	c := &Container{
		id:     fmt.Sprintf("pdf-export-%s", uuid.NewString()),
		tabCtx: tabCtx,
		cancel: cancel,
	}

	var created bool
	err := chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(spec.Width), int64(spec.Height), s.opts.DeviceScaleFactor, false),
		chromedp.Navigate("about:blank"),
		page.BringToFront(),
		chromedp.Evaluate(mustCall(createContainerScript, c.id, spec.Width, spec.Height), &created),
	)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(err, "failed to create container %s", c.id)
	}
	if !created {
		cancel()
		return nil, pdf.NewErrHiddenContainerMissing(c.id)
	}

	zap.S().Named("chrome_surface").Debugw("container created", "container", c.id, "width", spec.Width, "height", spec.Height)
	return c, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Surface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.browserCtx)
		s.browserCancel()
		s.allocCancel()
	})
	return err
}
