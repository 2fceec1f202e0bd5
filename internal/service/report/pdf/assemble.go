package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/go-pdf/fpdf"
)

// CoverGeneratedLayout renders the timestamp printed on the cover page.
const CoverGeneratedLayout = "January 2, 2006 at 15:04:05"

// TableOfContents is the fixed listing printed on the cover page.
var TableOfContents = []string{
	"1. Executive Summary and Charts",
	"2. Operating Systems and Resource Allocation",
	"3. Migration Warnings, Storage and Networks",
}

var (
	colorPrimary   = [3]int{44, 62, 80}
	colorTextMuted = [3]int{127, 140, 141}
	colorAccent    = [3]int{52, 152, 219}
)

type assembler struct {
	geometry PageGeometry
}

// assemble renders the cover page followed by one page per slice of bitmap, and stamps
// a "Page X of N" footer on every page.
func (a *assembler) assemble(title string, generatedAt time.Time, bitmap image.Image, slices []Slice) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(PageMarginMM, PageMarginMM, PageMarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("report-exporter", true)
	pdf.SetCreationDate(generatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	a.writeCoverPage(pdf, tr, title, generatedAt)

	for i, s := range slices {
		canvas, err := sliceCanvas(bitmap, s)
		if err != nil {
			return nil, err
		}
		if err := a.writeSlicePage(pdf, fmt.Sprintf("slice-%d", i), canvas); err != nil {
			return nil, err
		}
	}

	a.addPageNumbers(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *assembler) writeCoverPage(pdf *fpdf.Fpdf, tr func(string) string, title string, generatedAt time.Time) {
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.Rect(0, 0, pageWidth, 8, "F")

	pdf.SetY(70)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.MultiCell(0, 12, tr(title), "", "C", false)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated on %s", generatedAt.Format(CoverGeneratedLayout)), "", 1, "C", false, 0, "")

	pdf.SetY(130)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 10, "Table of Contents", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.SetLineWidth(0.4)
	pdf.Line(PageMarginMM, pdf.GetY(), pageWidth-PageMarginMM, pdf.GetY())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, entry := range TableOfContents {
		pdf.CellFormat(0, 8, tr(entry), "", 1, "L", false, 0, "")
	}
}

func (a *assembler) writeSlicePage(pdf *fpdf.Fpdf, name string, canvas *image.RGBA) error {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, canvas); err != nil {
		return fmt.Errorf("failed to encode page image: %w", err)
	}

	options := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, options, &encoded)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to register page image: %w", err)
	}

	bounds := canvas.Bounds()
	w, h := a.geometry.FitToContent(bounds.Dx(), bounds.Dy())
	x := PageMarginMM + (a.geometry.ContentWidthMM-w)/2

	pdf.AddPage()
	pdf.ImageOptions(name, x, PageMarginMM, w, h, false, options, 0, "")
	return pdf.Error()
}

func (a *assembler) addPageNumbers(pdf *fpdf.Fpdf) {
	totalPages := pdf.PageCount()
	for i := 1; i <= totalPages; i++ {
		pdf.SetPage(i)
		_, pageHeight := pdf.GetPageSize()

		pdf.SetY(pageHeight - PageMarginMM + 2)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of %d", i, totalPages), "", 0, "C", false, 0, "")
	}
}

// sliceCanvas copies one band of bitmap onto a white canvas of the same width.
func sliceCanvas(bitmap image.Image, s Slice) (*image.RGBA, error) {
	if bitmap == nil {
		return nil, NewErrCanvasContextUnavailable(errEmptyBitmap.Error())
	}
	bounds := bitmap.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, NewErrCanvasContextUnavailable(errEmptyBitmap.Error())
	}
	if s.Height <= 0 || s.Top < 0 || s.Bottom() > bounds.Dy() {
		return nil, NewErrCanvasContextUnavailable(fmt.Sprintf("band %d+%d outside bitmap of height %d", s.Top, s.Height, bounds.Dy()))
	}

	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), s.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), bitmap, image.Pt(bounds.Min.X, bounds.Min.Y+s.Top), draw.Over)
	return canvas, nil
}
