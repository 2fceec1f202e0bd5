package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

// fakeDocument is the shared state a real page would hold: attached containers,
// injected style nodes and the console hook.
type fakeDocument struct {
	containers     map[string]bool
	styles         map[string]string
	mounted        map[string]types.VisualTree
	consolePatched bool
	consoleRestore int
}

func newFakeDocument() *fakeDocument {
	return &fakeDocument{
		containers: map[string]bool{},
		styles:     map[string]string{},
		mounted:    map[string]types.VisualTree{},
	}
}

type fakeSurface struct {
	doc       *fakeDocument
	createErr error
	// configure is applied to every container created by the surface
	configure func(c *fakeContainer)
	created   []*fakeContainer
}

func (s *fakeSurface) CreateContainer(_ context.Context, spec ContainerSpec) (Container, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	c := &fakeContainer{
		id:       fmt.Sprintf("pdf-export-%d", len(s.created)+1),
		doc:      s.doc,
		spec:     spec,
		bitmap:   solidBitmap(190, 600),
		cssWidth: 190,
	}
	if s.configure != nil {
		s.configure(c)
	}
	s.doc.containers[c.id] = true
	s.created = append(s.created, c)
	return c, nil
}

type fakeContainer struct {
	id    string
	doc   *fakeDocument
	spec  ContainerSpec
	calls []string

	detached    bool
	frameErr    error
	images      ImageSettlement
	boundaries  []Boundary
	segments    []Segment
	cssWidth    float64
	bitmap      image.Image
	rasterErr   error
	rasterPanic bool
}

func (c *fakeContainer) record(call string) {
	c.calls = append(c.calls, call)
}

func (c *fakeContainer) ID() string { return c.id }

func (c *fakeContainer) Attached(context.Context) (bool, error) {
	c.record("Attached")
	return !c.detached, nil
}

func (c *fakeContainer) Mount(_ context.Context, tree types.VisualTree) error {
	c.record("Mount")
	c.doc.mounted[c.id] = tree
	return nil
}

func (c *fakeContainer) NextFrame(context.Context) error {
	c.record("NextFrame")
	return c.frameErr
}

func (c *fakeContainer) FontsReady(context.Context) error {
	c.record("FontsReady")
	return nil
}

func (c *fakeContainer) SettleImages(context.Context) (ImageSettlement, error) {
	c.record("SettleImages")
	return c.images, nil
}

func (c *fakeContainer) InjectStyles(_ context.Context, css string) error {
	c.record("InjectStyles")
	c.doc.styles[c.id] = css
	return nil
}

func (c *fakeContainer) Boundaries(_ context.Context, selector string) ([]Boundary, error) {
	c.record("Boundaries")
	if selector != BlockSelector {
		return nil, errors.New("unexpected selector")
	}
	return c.boundaries, nil
}

func (c *fakeContainer) Segments(context.Context) ([]Segment, error) {
	c.record("Segments")
	return c.segments, nil
}

func (c *fakeContainer) CSSWidth(context.Context) (float64, error) {
	c.record("CSSWidth")
	return c.cssWidth, nil
}

func (c *fakeContainer) SuppressConsoleWarnings(context.Context) (func(context.Context) error, error) {
	c.record("SuppressConsoleWarnings")
	c.doc.consolePatched = true
	return func(context.Context) error {
		c.record("RestoreConsole")
		c.doc.consolePatched = false
		c.doc.consoleRestore++
		return nil
	}, nil
}

func (c *fakeContainer) Rasterize(context.Context) (image.Image, error) {
	c.record("Rasterize")
	if c.rasterPanic {
		panic("raster surface lost")
	}
	if c.rasterErr != nil {
		return nil, c.rasterErr
	}
	return c.bitmap, nil
}

func (c *fakeContainer) Teardown(context.Context) error {
	c.record("Teardown")
	delete(c.doc.mounted, c.id)
	delete(c.doc.styles, c.id)
	delete(c.doc.containers, c.id)
	return nil
}

func solidBitmap(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 52, G: 152, B: 219, A: 255}}, image.Point{}, draw.Src)
	return img
}

type savedDocument struct {
	filename string
	mimeType string
	data     []byte
}

type recordingSaver struct {
	saved []savedDocument
}

func (r *recordingSaver) Save(_ context.Context, filename, mimeType string, data []byte) error {
	r.saved = append(r.saved, savedDocument{filename: filename, mimeType: mimeType, data: data})
	return nil
}
