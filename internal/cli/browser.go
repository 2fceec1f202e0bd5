package cli

import (
	"context"

	"github.com/kubev2v/assessment-report-exporter/internal/config"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/pdf"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/pdf/chrome"
)

func chromeOptions(cfg *config.Config) chrome.Options {
	return chrome.Options{
		ExecPath:          cfg.Chrome.ExecPath,
		Headless:          cfg.Chrome.Headless,
		NoSandbox:         cfg.Chrome.NoSandbox,
		StartupAttempts:   cfg.Chrome.StartupAttempts,
		StartupDelay:      cfg.Chrome.StartupDelay,
		WSURLReadTimeout:  cfg.Chrome.WSURLReadTimeout,
		DeviceScaleFactor: cfg.Chrome.DeviceScaleFactor,
	}
}

func pdfConfig(cfg *config.Config) pdf.Config {
	return pdf.Config{
		ContainerWidth:  cfg.Export.ContainerWidth,
		ContainerHeight: cfg.Export.ContainerHeight,
		Slicing: pdf.SliceConfig{
			MinBlockHeight: cfg.Export.MinBlockHeight,
			MinAdvance:     cfg.Export.MinAdvance,
			BleedGuard:     cfg.Export.BleedGuard,
			Tolerance:      cfg.Export.Tolerance,
			SegmentGuard:   cfg.Export.SegmentGuard,
			MaxSlices:      cfg.Export.MaxSlices,
		},
	}
}

// newPDFGenerator starts a browser and returns a generator rendering on it, together with the
// func shutting the browser down.
func newPDFGenerator(ctx context.Context, cfg *config.Config, saver download.Saver) (*pdf.Generator, func() error, error) {
	surface, err := chrome.NewSurface(ctx, chromeOptions(cfg))
	if err != nil {
		return nil, nil, err
	}

	generator, err := pdf.NewGenerator(surface, saver, pdfConfig(cfg))
	if err != nil {
		_ = surface.Close()
		return nil, nil, err
	}
	return generator, surface.Close, nil
}
