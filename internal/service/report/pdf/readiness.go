package pdf

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FrameScheduler resolves once the next animation frame has been rendered.
type FrameScheduler interface {
	NextFrame(ctx context.Context) error
}

// FontSet resolves once every web font used by the document is ready.
type FontSet interface {
	FontsReady(ctx context.Context) error
}

// ImageSettlement counts the images of a container once each of them loaded or failed.
type ImageSettlement struct {
	Loaded int `json:"loaded"`
	Failed int `json:"failed"`
}

// ImageSet resolves once every image reached a loaded or errored state.
type ImageSet interface {
	SettleImages(ctx context.Context) (ImageSettlement, error)
}

// renderFrames is the number of animation frames awaited before the tree is considered painted.
const renderFrames = 2

// WaitForRender waits, in order, for two animation frames, the web fonts and the images.
// Broken images are logged and tolerated.
func WaitForRender(ctx context.Context, frames FrameScheduler, fonts FontSet, images ImageSet) error {
	logger := zap.S().Named("pdf_readiness")

	for i := 0; i < renderFrames; i++ {
		if err := frames.NextFrame(ctx); err != nil {
			return fmt.Errorf("waiting for animation frame: %w", err)
		}
	}

	if err := fonts.FontsReady(ctx); err != nil {
		return fmt.Errorf("waiting for fonts: %w", err)
	}

	settled, err := images.SettleImages(ctx)
	if err != nil {
		return fmt.Errorf("waiting for images: %w", err)
	}
	if settled.Failed > 0 {
		logger.Warnw("some images failed to load", "failed", settled.Failed, "loaded", settled.Loaded)
	}

	logger.Debugw("render settled", "images", settled.Loaded+settled.Failed)
	return nil
}
