package apiserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiserver "github.com/kubev2v/assessment-report-exporter/internal/api_server"
	"github.com/kubev2v/assessment-report-exporter/internal/config"
	"github.com/kubev2v/assessment-report-exporter/internal/service"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/html"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

const snapshotJSON = `{"inventory": {"vcenter": {"infra": {"totalHosts": 4, "datastores": [], "networks": []}, "vms": {"total": 12, "powerStates": {"poweredOn": 10}}}}}`

type pdfGeneratorFunc func(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error

func (f pdfGeneratorFunc) Generate(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error {
	return f(ctx, tree, opts)
}

// interruptedWriter fails the first body write, as a client hanging up mid-download does.
type interruptedWriter struct {
	*httptest.ResponseRecorder
	interrupted bool
}

func (w *interruptedWriter) Write(data []byte) (int, error) {
	if !w.interrupted {
		w.interrupted = true
		return 0, errors.New("connection reset")
	}
	return w.ResponseRecorder.Write(data)
}

var _ = Describe("export api", func() {
	var (
		router   chi.Router
		pdfErr   error
		lastTree types.VisualTree
		lastOpts types.PDFOptions
	)

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decodeResult := func(rec *httptest.ResponseRecorder) types.ExportResult {
		var result types.ExportResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		return result
	}

	BeforeEach(func() {
		pdfErr = nil
		lastTree = types.VisualTree{}
		lastOpts = types.PDFOptions{}

		pdfGenerator := pdfGeneratorFunc(func(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) error {
			lastTree = tree
			lastOpts = opts
			if pdfErr != nil {
				return pdfErr
			}
			return download.FromContext(ctx, nil).Save(ctx, "Dashboard_Report.pdf", types.MimeTypePDF, []byte("%PDF-1.3"))
		})
		exporter := service.NewReportExportService(pdfGenerator, html.NewGenerator(nil))

		cfg, err := config.Load()
		Expect(err).To(BeNil())
		cfg.Service.MaxBodyBytes = 4096

		router, err = apiserver.New(cfg, nil, exporter).Router()
		Expect(err).To(BeNil())
	})

	It("reports health", func() {
		rec := serve(http.MethodGet, apiserver.HealthEndpoint, "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"status": "ok", "pdf": true}`))
		Expect(rec.Header().Get("X-Request-Id")).NotTo(BeEmpty())
	})

	Context("html export", func() {
		It("streams the document as an attachment", func() {
			rec := serve(http.MethodPost, apiserver.HTMLExportEndpoint+"?title=Estate", snapshotJSON)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal(types.MimeTypeHTML))
			Expect(rec.Header().Get("Content-Disposition")).To(Equal(fmt.Sprintf("attachment; filename=%q", html.DefaultFilename)))
			Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
			Expect(rec.Body.String()).To(ContainSubstring("<title>Estate</title>"))
		})

		It("keeps an explicit empty title and a custom filename", func() {
			rec := serve(http.MethodPost, apiserver.HTMLExportEndpoint+"?title=&filename=estate.html", snapshotJSON)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="estate.html"`))
			Expect(rec.Body.String()).To(ContainSubstring("<title></title>"))
		})

		It("returns the export result for an invalid inventory", func() {
			rec := serve(http.MethodPost, apiserver.HTMLExportEndpoint, `{"unexpected": {}}`)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decodeResult(rec)).To(Equal(types.Failed(types.ErrorKindHTML, "Invalid inventory data structure")))
		})

		It("rejects an unreadable body", func() {
			rec := serve(http.MethodPost, apiserver.HTMLExportEndpoint, "")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			result := decodeResult(rec)
			Expect(result.Success).To(BeFalse())
			Expect(result.Error.Kind).To(Equal(types.ErrorKindGeneral))
		})

		It("rejects a body over the limit", func() {
			rec := serve(http.MethodPost, apiserver.HTMLExportEndpoint, strings.Repeat(" ", 5000)+snapshotJSON)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeResult(rec).Error.Kind).To(Equal(types.ErrorKindGeneral))
		})
	})

	Context("pdf export", func() {
		It("exports a visual tree", func() {
			rec := serve(http.MethodPost, apiserver.PDFExportEndpoint, `{"title": "Q3", "tree": {"html": "<p>hi</p>"}}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal(types.MimeTypePDF))
			body, _ := io.ReadAll(rec.Body)
			Expect(string(body)).To(Equal("%PDF-1.3"))
			Expect(lastTree.HTML).To(Equal("<p>hi</p>"))
			Expect(*lastOpts.DocumentTitle).To(Equal("Q3"))
		})

		It("exports the report of an inventory", func() {
			rec := serve(http.MethodPost, apiserver.PDFExportEndpoint, `{"inventory": `+snapshotJSON+`}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(lastTree.HTML).To(ContainSubstring(`data-pdf-segment="1"`))
			Expect(lastOpts.DocumentTitle).To(BeNil())
		})

		It("returns the pdf error of a failed export", func() {
			pdfErr = errors.New("capture failed")

			rec := serve(http.MethodPost, apiserver.PDFExportEndpoint, `{"tree": {"html": "<p>hi</p>"}}`)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decodeResult(rec)).To(Equal(types.Failed(types.ErrorKindPDF, "capture failed")))
		})

		It("does not append an error reply to an interrupted download", func() {
			req := httptest.NewRequest(http.MethodPost, apiserver.PDFExportEndpoint, strings.NewReader(`{"tree": {"html": "<p>hi</p>"}}`))
			w := &interruptedWriter{ResponseRecorder: httptest.NewRecorder()}
			router.ServeHTTP(w, req)

			Expect(w.interrupted).To(BeTrue())
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal(types.MimeTypePDF))
			Expect(w.Body.String()).To(BeEmpty())
		})

		DescribeTable("rejects malformed requests",
			func(body string) {
				rec := serve(http.MethodPost, apiserver.PDFExportEndpoint, body)

				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(decodeResult(rec).Error.Kind).To(Equal(types.ErrorKindGeneral))
			},
			Entry("not json", `tree: {}`),
			Entry("neither tree nor inventory", `{"title": "x"}`),
			Entry("both tree and inventory", `{"tree": {"html": ""}, "inventory": `+snapshotJSON+`}`),
		)
	})
})

var _ = Describe("metrics server", func() {
	It("serves prometheus metrics until the context is done", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- apiserver.NewMetricServer(listener.Addr().String(), listener).Run(ctx)
		}()

		var body string
		Eventually(func() error {
			resp, err := http.Get(fmt.Sprintf("http://%s/metrics", listener.Addr().String()))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			body = string(data)
			return err
		}).WithTimeout(5 * time.Second).Should(Succeed())
		Expect(body).To(ContainSubstring("go_goroutines"))

		cancel()
		Eventually(done).WithTimeout(10 * time.Second).Should(Receive(BeNil()))
	})
})
