package pdf

import (
	"context"
	"image"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

// Off-screen canvas the visual tree is laid out on, in CSS pixels.
const (
	ContainerWidth  = 1400
	ContainerHeight = 900
)

type ContainerSpec struct {
	Width  int
	Height int
}

// Surface creates off-screen containers attached to a live document.
type Surface interface {
	CreateContainer(ctx context.Context, spec ContainerSpec) (Container, error)
}

// Container is one off-screen container and the visual tree mounted into it.
type Container interface {
	FrameScheduler
	FontSet
	ImageSet

	ID() string
	// Attached reports whether the container is still part of the document.
	Attached(ctx context.Context) (bool, error)
	Mount(ctx context.Context, tree types.VisualTree) error
	InjectStyles(ctx context.Context, css string) error
	// Boundaries returns the extent of every element matching selector, in container pixels.
	Boundaries(ctx context.Context, selector string) ([]Boundary, error)
	// Segments returns the regions tagged with the data-pdf-segment attribute, in container pixels.
	Segments(ctx context.Context) ([]Segment, error)
	// CSSWidth is the laid out width of the container, used to map container pixels to bitmap pixels.
	CSSWidth(ctx context.Context) (float64, error)
	// SuppressConsoleWarnings silences console.warn until the returned restore func is called.
	SuppressConsoleWarnings(ctx context.Context) (func(context.Context) error, error)
	Rasterize(ctx context.Context) (image.Image, error)
	// Teardown unmounts the tree and detaches the container and the nodes added to the document.
	Teardown(ctx context.Context) error
}
