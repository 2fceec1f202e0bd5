package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
	"github.com/kubev2v/assessment-report-exporter/pkg/requestid"
)

const (
	HealthEndpoint     = "/health"
	HTMLExportEndpoint = "/api/v1/exports/html"
	PDFExportEndpoint  = "/api/v1/exports/pdf"
)

// Exporter is the export façade served over HTTP.
type Exporter interface {
	ExportHTML(ctx context.Context, snapshot *inventory.Snapshot, opts types.HTMLOptions) types.ExportResult
	ExportPDF(ctx context.Context, tree types.VisualTree, opts types.PDFOptions) types.ExportResult
	ExportInventoryPDF(ctx context.Context, snapshot *inventory.Snapshot, opts types.PDFOptions) types.ExportResult
	PDFAvailable() bool
}

// PDFExportRequest is the body of a PDF export. Exactly one of Tree and Inventory is required.
type PDFExportRequest struct {
	Title     *string           `json:"title,omitempty"`
	Tree      *types.VisualTree `json:"tree,omitempty"`
	Inventory json.RawMessage   `json:"inventory,omitempty"`
}

type ExportReply struct {
	types.ExportResult
}

func (e ExportReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type HealthReply struct {
	Status string `json:"status"`
	PDF    bool   `json:"pdf"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type handler struct {
	exporter     Exporter
	maxBodyBytes int64
	now          func() time.Time
}

// RegisterApi mounts the export and health endpoints on router.
func RegisterApi(router chi.Router, exporter Exporter, maxBodyBytes int64) {
	h := &handler{exporter: exporter, maxBodyBytes: maxBodyBytes, now: time.Now}

	router.Get(HealthEndpoint, h.health)
	router.Post(HTMLExportEndpoint, h.exportHTML)
	router.Post(PDFExportEndpoint, h.exportPDF)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "ok", PDF: h.exporter.PDFAvailable()})
}

// exportHTML takes the inventory snapshot, JSON or YAML, as the request body. The optional
// title and filename query parameters are used as-is, an empty title included.
func (h *handler) exportHTML(w http.ResponseWriter, r *http.Request) {
	logger := requestid.Logger(r.Context(), "export_handler")

	data, err := h.readBody(w, r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	snapshot, err := inventory.Parse(data)
	if err != nil {
		badRequest(w, r, err)
		return
	}

	query := r.URL.Query()
	opts := types.HTMLOptions{
		Filename:    query.Get("filename"),
		GeneratedAt: h.now(),
	}
	if query.Has("title") {
		title := query.Get("title")
		opts.DocumentTitle = &title
	}

	saver := download.NewResponseSaver(w)
	ctx := download.WithSaver(r.Context(), saver)
	result := h.exporter.ExportHTML(ctx, snapshot, opts)
	if !result.Success {
		logger.Warnw("html export failed", "message", result.Error.Message)
		unprocessable(w, r, saver, result)
		return
	}
	logger.Infow("html export served")
}

func (h *handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	logger := requestid.Logger(r.Context(), "export_handler")

	data, err := h.readBody(w, r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req PDFExportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		badRequest(w, r, fmt.Errorf("failed to decode export request: %w", err))
		return
	}

	hasInventory := len(req.Inventory) > 0 && string(req.Inventory) != "null"
	if (req.Tree == nil) == !hasInventory {
		badRequest(w, r, errors.New("exactly one of tree and inventory is required"))
		return
	}

	opts := types.PDFOptions{DocumentTitle: req.Title, GeneratedAt: h.now()}
	saver := download.NewResponseSaver(w)
	ctx := download.WithSaver(r.Context(), saver)

	var result types.ExportResult
	if req.Tree != nil {
		result = h.exporter.ExportPDF(ctx, *req.Tree, opts)
	} else {
		snapshot, err := inventory.Parse(req.Inventory)
		if err != nil {
			badRequest(w, r, err)
			return
		}
		result = h.exporter.ExportInventoryPDF(ctx, snapshot, opts)
	}

	if !result.Success {
		logger.Warnw("pdf export failed", "message", result.Error.Message)
		unprocessable(w, r, saver, result)
		return
	}
	logger.Infow("pdf export served")
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	_ = render.Render(w, r, ExportReply{types.Failed(types.ErrorKindGeneral, err.Error())})
}

func unprocessable(w http.ResponseWriter, r *http.Request, saver *download.ResponseSaver, result types.ExportResult) {
	if saver.Committed() {
		requestid.Logger(r.Context(), "export_handler").Errorw("document response interrupted", "message", result.Error.Message)
		return
	}
	render.Status(r, http.StatusUnprocessableEntity)
	_ = render.Render(w, r, ExportReply{result})
}
