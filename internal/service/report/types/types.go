package types

import (
	"time"
)

type ReportFormat string

const (
	ReportFormatHTML ReportFormat = "html"
	ReportFormatPDF  ReportFormat = "pdf"
)

const (
	MimeTypeHTML = "text/html;charset=utf-8"
	MimeTypePDF  = "application/pdf"
)

// LabelValue is a single categorical data point of a chart.
type LabelValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ResourceDatum compares the current allocation of a resource with the projected
// allocation once the migration overhead is applied.
type ResourceDatum struct {
	Name      string  `json:"name"`
	Current   float64 `json:"current"`
	Projected float64 `json:"projected"`
}

// ChartSeries holds every derived series needed to draw the report charts.
type ChartSeries struct {
	PowerStateData   []LabelValue    `json:"powerStateData"`
	ResourceData     []ResourceDatum `json:"resourceData"`
	OSData           []LabelValue    `json:"osData"`
	WarningsData     []LabelValue    `json:"warningsData"`
	StorageLabels    []string        `json:"storageLabels"`
	StorageUsedData  []float64       `json:"storageUsedData"`
	StorageTotalData []float64       `json:"storageTotalData"`
}

// VisualTree describes the content mounted into the off-screen container of a PDF export.
// The HTML may be a fragment or a full document; scripts inside it are executed in order.
type VisualTree struct {
	HTML        string   `json:"html"`
	Stylesheets []string `json:"stylesheets,omitempty"`
	Scripts     []string `json:"scripts,omitempty"`
}

type HTMLOptions struct {
	// DocumentTitle is used as-is when set, including the empty string.
	DocumentTitle *string
	Filename      string
	GeneratedAt   time.Time
}

type PDFOptions struct {
	// DocumentTitle is used as-is when set, including the empty string.
	DocumentTitle *string
	GeneratedAt   time.Time
}

type ErrorKind string

const (
	ErrorKindPDF     ErrorKind = "pdf"
	ErrorKindHTML    ErrorKind = "html"
	ErrorKindGeneral ErrorKind = "general"
)

type ExportError struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// ExportResult is the outcome of an export. It is returned, never raised.
type ExportResult struct {
	Success bool         `json:"success"`
	Error   *ExportError `json:"error,omitempty"`
}

func Succeeded() ExportResult {
	return ExportResult{Success: true}
}

func Failed(kind ErrorKind, message string) ExportResult {
	return ExportResult{
		Success: false,
		Error:   &ExportError{Message: message, Kind: kind},
	}
}
