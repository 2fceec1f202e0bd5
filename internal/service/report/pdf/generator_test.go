package pdf

import (
	"context"
	"errors"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

var pageObject = regexp.MustCompile(`/Type /Page\b`)

func pageCount(data []byte) int {
	return len(pageObject.FindAll(data, -1))
}

var _ = Describe("Generator", func() {
	var (
		ctx       context.Context
		doc       *fakeDocument
		surface   *fakeSurface
		saver     *recordingSaver
		generator *Generator
		tree      types.VisualTree
	)

	BeforeEach(func() {
		ctx = context.Background()
		doc = newFakeDocument()
		surface = &fakeSurface{doc: doc}
		saver = &recordingSaver{}
		tree = types.VisualTree{HTML: `<div class="chart-container">chart</div>`}

		var err error
		generator, err = NewGenerator(surface, saver, DefaultConfig())
		Expect(err).To(BeNil())
	})

	Context("successful export", func() {
		It("renders, paginates and saves the document", func() {
			err := generator.Generate(ctx, tree, types.PDFOptions{})
			Expect(err).To(BeNil())

			Expect(saver.saved).To(HaveLen(1))
			saved := saver.saved[0]
			Expect(saved.filename).To(Equal("Dashboard_Report.pdf"))
			Expect(saved.mimeType).To(Equal("application/pdf"))
			Expect(string(saved.data[:5])).To(Equal("%PDF-"))

			// cover page plus 277, 277 and 46 pixel slices
			Expect(pageCount(saved.data)).To(Equal(4))
		})

		It("waits for the render in order before measuring and cleans up", func() {
			Expect(generator.Generate(ctx, tree, types.PDFOptions{})).To(Succeed())

			Expect(surface.created).To(HaveLen(1))
			c := surface.created[0]
			Expect(c.spec).To(Equal(ContainerSpec{Width: ContainerWidth, Height: ContainerHeight}))
			Expect(c.calls).To(Equal([]string{
				"Attached",
				"Mount",
				"NextFrame",
				"NextFrame",
				"FontsReady",
				"SettleImages",
				"InjectStyles",
				"Boundaries",
				"Segments",
				"CSSWidth",
				"SuppressConsoleWarnings",
				"Rasterize",
				"RestoreConsole",
				"Teardown",
			}))

			Expect(doc.containers).To(BeEmpty())
			Expect(doc.mounted).To(BeEmpty())
			Expect(doc.styles).To(BeEmpty())
			Expect(doc.consolePatched).To(BeFalse())
		})

		It("tolerates broken images", func() {
			surface.configure = func(c *fakeContainer) {
				c.images = ImageSettlement{Loaded: 2, Failed: 3}
			}

			Expect(generator.Generate(ctx, tree, types.PDFOptions{})).To(Succeed())
			Expect(saver.saved).To(HaveLen(1))
		})

		It("derives the filename from the title", func() {
			title := "Q3 Estate.pdf"
			Expect(generator.Generate(ctx, tree, types.PDFOptions{DocumentTitle: &title})).To(Succeed())

			Expect(saver.saved).To(HaveLen(1))
			Expect(saver.saved[0].filename).To(Equal("Q3_Estate.pdf"))
		})

		It("uses the three named segments as pages when they exist", func() {
			surface.configure = func(c *fakeContainer) {
				c.bitmap = solidBitmap(190, 1000)
				c.segments = []Segment{
					{Index: 1, Top: 0, Bottom: 250},
					{Index: 2, Top: 250, Bottom: 600},
					{Index: 3, Top: 600, Bottom: 1000},
				}
			}

			Expect(generator.Generate(ctx, tree, types.PDFOptions{})).To(Succeed())
			Expect(pageCount(saver.saved[0].data)).To(Equal(4))
		})

		It("falls back to generic slicing without named segments", func() {
			surface.configure = func(c *fakeContainer) {
				c.bitmap = solidBitmap(190, 1000)
				c.segments = []Segment{{Index: 1, Top: 0, Bottom: 250}}
			}

			Expect(generator.Generate(ctx, tree, types.PDFOptions{})).To(Succeed())
			// 277, 277, 277 and 169 pixel slices
			Expect(pageCount(saver.saved[0].data)).To(Equal(5))
		})

		It("routes the document to the saver carried by the context", func() {
			override := &recordingSaver{}
			Expect(generator.Generate(download.WithSaver(ctx, override), tree, types.PDFOptions{})).To(Succeed())

			Expect(saver.saved).To(BeEmpty())
			Expect(override.saved).To(HaveLen(1))
		})
	})

	Context("cleanup guarantee", func() {
		It("removes the container and restores the console when rasterization fails", func() {
			surface.configure = func(c *fakeContainer) {
				c.rasterErr = errors.New("capture failed")
			}

			err := generator.Generate(ctx, tree, types.PDFOptions{})
			Expect(err).To(MatchError(ContainSubstring("capture failed")))

			Expect(doc.containers).To(BeEmpty())
			Expect(doc.mounted).To(BeEmpty())
			Expect(doc.styles).To(BeEmpty())
			Expect(doc.consolePatched).To(BeFalse())
			Expect(doc.consoleRestore).To(Equal(1))
			Expect(saver.saved).To(BeEmpty())
		})

		It("cleans up even when rasterization panics", func() {
			surface.configure = func(c *fakeContainer) {
				c.rasterPanic = true
			}

			Expect(func() {
				_ = generator.Generate(ctx, tree, types.PDFOptions{})
			}).To(PanicWith("raster surface lost"))

			Expect(doc.containers).To(BeEmpty())
			Expect(doc.mounted).To(BeEmpty())
			Expect(doc.consolePatched).To(BeFalse())
		})

		It("reports a detached container and still tears it down", func() {
			surface.configure = func(c *fakeContainer) {
				c.detached = true
			}

			err := generator.Generate(ctx, tree, types.PDFOptions{})

			var missing *ErrHiddenContainerMissing
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(surface.created[0].calls).To(Equal([]string{"Attached", "Teardown"}))
			Expect(doc.containers).To(BeEmpty())
		})

		It("stops before rasterizing when the frame wait fails", func() {
			surface.configure = func(c *fakeContainer) {
				c.frameErr = context.Canceled
			}

			err := generator.Generate(ctx, tree, types.PDFOptions{})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(surface.created[0].calls).NotTo(ContainElement("Rasterize"))
			Expect(surface.created[0].calls).To(ContainElement("Teardown"))
			Expect(doc.containers).To(BeEmpty())
		})

		It("returns the surface error when no container can be created", func() {
			surface.createErr = errors.New("browser gone")

			err := generator.Generate(ctx, tree, types.PDFOptions{})
			Expect(err).To(MatchError(ContainSubstring("browser gone")))
			Expect(saver.saved).To(BeEmpty())
		})

		It("fails with an unavailable canvas on an empty bitmap", func() {
			surface.configure = func(c *fakeContainer) {
				c.bitmap = nil
			}

			err := generator.Generate(ctx, tree, types.PDFOptions{})

			var canvas *ErrCanvasContextUnavailable
			Expect(errors.As(err, &canvas)).To(BeTrue())
			Expect(doc.containers).To(BeEmpty())
		})
	})

	It("walks the export states in order", func() {
		run := newExportRun(zap.NewNop().Sugar())

		err := withContainer(ctx, surface, ContainerSpec{Width: 10, Height: 10}, run, func(ctx context.Context, c Container) error {
			_, err := generator.render(ctx, c, tree, run)
			return err
		})
		Expect(err).To(BeNil())

		Expect(run.history).To(Equal([]State{
			StateIdle,
			StateContainerCreated,
			StateComponentMounted,
			StateStylesInjected,
			StateBoundariesCollected,
			StateRastered,
		}))
	})

	It("logs the states of a failed export when it finishes", func() {
		core, logs := observer.New(zapcore.DebugLevel)
		run := newExportRun(zap.New(core).Sugar())
		surface.configure = func(c *fakeContainer) {
			c.rasterErr = errors.New("capture failed")
		}

		err := withContainer(ctx, surface, ContainerSpec{Width: 10, Height: 10}, run, func(ctx context.Context, c Container) error {
			_, err := generator.render(ctx, c, tree, run)
			return err
		})
		Expect(err).NotTo(BeNil())
		run.finish()

		finished := logs.FilterMessage("pdf export finished").All()
		Expect(finished).To(HaveLen(1))
		Expect(finished[0].ContextMap()["states"]).To(Equal([]interface{}{
			"Idle", "ContainerCreated", "ComponentMounted", "StylesInjected", "BoundariesCollected", "Cleaned",
		}))
	})

	It("rejects an invalid configuration", func() {
		cfg := DefaultConfig()
		cfg.Slicing.MaxSlices = 0

		_, err := NewGenerator(surface, saver, cfg)
		Expect(err).NotTo(BeNil())
	})
})

var _ = Describe("WaitForRender", func() {
	It("propagates font failures", func() {
		c := &fakeContainer{doc: newFakeDocument()}
		fonts := failingFonts{err: errors.New("font blocked")}

		err := WaitForRender(context.Background(), c, fonts, c)
		Expect(err).To(MatchError(ContainSubstring("font blocked")))
		Expect(c.calls).To(Equal([]string{"NextFrame", "NextFrame"}))
	})
})

type failingFonts struct {
	err error
}

func (f failingFonts) FontsReady(context.Context) error {
	return f.err
}
