package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/assessment-report-exporter/internal/service"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/html"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/pdf"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

type pdfGeneratorFunc func(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error

func (f pdfGeneratorFunc) Generate(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error {
	return f(ctx, tree, opts)
}

type htmlGeneratorFunc func(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) error

func (f htmlGeneratorFunc) Generate(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) error {
	return f(ctx, snapshot, opts)
}

type nopSaver struct {
	saved []string
}

func (n *nopSaver) Save(_ context.Context, filename, _ string, _ []byte) error {
	n.saved = append(n.saved, filename)
	return nil
}

var _ = Describe("ReportExportService", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("ExportPDF", func() {
		It("reports success", func() {
			var got types.VisualTree
			svc := service.NewReportExportService(pdfGeneratorFunc(func(_ context.Context, tree types.VisualTree, _ types.PDFOptions) error {
				got = tree
				return nil
			}), nil)

			result := svc.ExportPDF(ctx, types.VisualTree{HTML: "<p>x</p>"}, types.PDFOptions{})

			Expect(result).To(Equal(types.ExportResult{Success: true}))
			Expect(got.HTML).To(Equal("<p>x</p>"))
		})

		DescribeTable("maps failures to a pdf error",
			func(failure func() error, expected string) {
				svc := service.NewReportExportService(pdfGeneratorFunc(func(context.Context, types.VisualTree, types.PDFOptions) error {
					return failure()
				}), nil)

				result := svc.ExportPDF(ctx, types.VisualTree{}, types.PDFOptions{})

				Expect(result.Success).To(BeFalse())
				Expect(result.Error).NotTo(BeNil())
				Expect(result.Error.Kind).To(Equal(types.ErrorKindPDF))
				Expect(result.Error.Message).To(Equal(expected))
			},
			Entry("with the error message", func() error { return errors.New("capture failed") }, "capture failed"),
			Entry("with a typed error", func() error { return pdf.NewErrHiddenContainerMissing("pdf-export-1") }, "hidden container pdf-export-1 is missing from the document"),
			Entry("with the fallback for an empty message", func() error { return errors.New("") }, service.PDFFallbackMessage),
			Entry("with the fallback for a string panic", func() error { panic("boom") }, service.PDFFallbackMessage),
			Entry("with the message of a runtime panic", func() error {
				var tree *types.VisualTree
				return errors.New(tree.HTML)
			}, "runtime error: invalid memory address or nil pointer dereference"),
			Entry("with the panicking error message", func() error { panic(errors.New("surface lost")) }, "surface lost"),
		)

		It("fails without a generator", func() {
			result := service.NewReportExportService(nil, nil).ExportPDF(ctx, types.VisualTree{}, types.PDFOptions{})

			Expect(result.Success).To(BeFalse())
			Expect(result.Error.Kind).To(Equal(types.ErrorKindPDF))
			Expect(result.Error.Message).To(Equal("pdf export is not available"))
		})
	})

	Context("ExportHTML", func() {
		It("reports a missing inventory with an html error", func() {
			saver := &nopSaver{}
			svc := service.NewReportExportService(nil, html.NewGenerator(saver))

			result := svc.ExportHTML(ctx, nil, types.HTMLOptions{})

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal(&types.ExportError{
				Message: "No inventory data available for export",
				Kind:    types.ErrorKindHTML,
			}))
			Expect(saver.saved).To(BeEmpty())
		})

		It("reports an invalid inventory shape", func() {
			svc := service.NewReportExportService(nil, html.NewGenerator(&nopSaver{}))

			result := svc.ExportHTML(ctx, &inventory.Snapshot{}, types.HTMLOptions{})

			Expect(result.Success).To(BeFalse())
			Expect(result.Error.Message).To(Equal("Invalid inventory data structure"))
			Expect(result.Error.Kind).To(Equal(types.ErrorKindHTML))
		})

		It("exports a valid inventory", func() {
			saver := &nopSaver{}
			svc := service.NewReportExportService(nil, html.NewGenerator(saver))

			snapshot, err := inventory.Parse([]byte(`{"infra": {"totalHosts": 2}, "vms": {"total": 3}}`))
			Expect(err).To(BeNil())

			result := svc.ExportHTML(ctx, snapshot, types.HTMLOptions{})

			Expect(result).To(Equal(types.Succeeded()))
			Expect(saver.saved).To(Equal([]string{html.DefaultFilename}))
		})

		It("uses the html fallback for a panic", func() {
			svc := service.NewReportExportService(nil, htmlGeneratorFunc(func(context.Context, *inventory.Snapshot, types.HTMLOptions) error {
				panic(42)
			}))

			result := svc.ExportHTML(ctx, &inventory.Snapshot{}, types.HTMLOptions{})

			Expect(result.Error).To(Equal(&types.ExportError{Message: service.HTMLFallbackMessage, Kind: types.ErrorKindHTML}))
		})
	})

	Context("ExportInventoryPDF", func() {
		It("exports the report of the inventory", func() {
			var got types.VisualTree
			pdfGenerator := pdfGeneratorFunc(func(_ context.Context, tree types.VisualTree, _ types.PDFOptions) error {
				got = tree
				return nil
			})
			svc := service.NewReportExportService(pdfGenerator, html.NewGenerator(&nopSaver{}))

			snapshot, err := inventory.Parse([]byte(`{"inventory": {"infra": {"totalHosts": 2}, "vms": {"total": 3}}}`))
			Expect(err).To(BeNil())
			title := "Estate"

			result := svc.ExportInventoryPDF(ctx, snapshot, types.PDFOptions{DocumentTitle: &title})

			Expect(result.Success).To(BeTrue())
			Expect(got.HTML).To(ContainSubstring("<h1>Estate</h1>"))
			Expect(got.HTML).To(ContainSubstring(`data-pdf-segment="3"`))
		})

		It("reports the inventory error as a pdf error", func() {
			svc := service.NewReportExportService(pdfGeneratorFunc(func(context.Context, types.VisualTree, types.PDFOptions) error {
				return nil
			}), html.NewGenerator(&nopSaver{}))

			result := svc.ExportInventoryPDF(ctx, nil, types.PDFOptions{})

			Expect(result.Error).To(Equal(&types.ExportError{
				Message: "No inventory data available for export",
				Kind:    types.ErrorKindPDF,
			}))
		})

		It("fails when the html generator cannot build trees", func() {
			svc := service.NewReportExportService(pdfGeneratorFunc(func(context.Context, types.VisualTree, types.PDFOptions) error {
				return nil
			}), htmlGeneratorFunc(func(context.Context, *inventory.Snapshot, types.HTMLOptions) error {
				return nil
			}))

			result := svc.ExportInventoryPDF(ctx, &inventory.Snapshot{}, types.PDFOptions{})

			Expect(result.Success).To(BeFalse())
			Expect(svc.PDFAvailable()).To(BeTrue())
		})
	})
})
