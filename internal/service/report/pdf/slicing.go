package pdf

import (
	"math"
	"slices"
)

// A4 portrait page with fixed margins, in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	PageMarginMM = 10.0
)

// NamedSegmentCount is the number of tagged regions required by the named-segment strategy.
const NamedSegmentCount = 3

// Boundary is the vertical extent of one block, relative to the container origin.
type Boundary struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

func (b Boundary) Bottom() float64 {
	return b.Top + b.Height
}

// Segment is a tagged region of the mounted tree. Index is the value of its data-pdf-segment attribute.
type Segment struct {
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Slice is a horizontal band of the bitmap, in bitmap pixels, mapped to one page.
type Slice struct {
	Top    int
	Height int
}

func (s Slice) Bottom() int {
	return s.Top + s.Height
}

// SliceConfig holds the slicing thresholds, in bitmap pixels.
type SliceConfig struct {
	MinBlockHeight float64 `validate:"gte=0"`
	MinAdvance     float64 `validate:"gt=0"`
	BleedGuard     float64 `validate:"gte=0"`
	Tolerance      float64 `validate:"gte=0"`
	SegmentGuard   float64 `validate:"gte=0"`
	MaxSlices      int     `validate:"gt=0"`
}

func DefaultSliceConfig() SliceConfig {
	return SliceConfig{
		MinBlockHeight: 20,
		MinAdvance:     100,
		BleedGuard:     2,
		Tolerance:      150,
		SegmentGuard:   10,
		MaxSlices:      200,
	}
}

// PageGeometry maps bitmap pixels onto the content area of a page.
type PageGeometry struct {
	ContentWidthMM  float64
	ContentHeightMM float64
	PxPerMM         float64
	PageHeightPx    int
}

// NewPageGeometry scales the bitmap width onto the content width of an A4 page.
func NewPageGeometry(bitmapWidth int) PageGeometry {
	g := PageGeometry{
		ContentWidthMM:  PageWidthMM - 2*PageMarginMM,
		ContentHeightMM: PageHeightMM - 2*PageMarginMM,
	}
	if bitmapWidth <= 0 {
		return g
	}
	g.PxPerMM = float64(bitmapWidth) / g.ContentWidthMM
	g.PageHeightPx = int(math.Floor(g.ContentHeightMM * g.PxPerMM))
	return g
}

// FitToContent returns the placement size, in millimetres, of a band of the given pixel
// size so it fits the content area with its aspect ratio preserved.
func (g PageGeometry) FitToContent(widthPx, heightPx int) (float64, float64) {
	if widthPx <= 0 || heightPx <= 0 {
		return 0, 0
	}
	w := g.ContentWidthMM
	h := w * float64(heightPx) / float64(widthPx)
	if h > g.ContentHeightMM {
		w = w * g.ContentHeightMM / h
		h = g.ContentHeightMM
	}
	return w, h
}

// NormalizeBoundaries drops blocks shorter than minHeight and sorts the rest top to bottom.
func NormalizeBoundaries(boundaries []Boundary, minHeight float64) []Boundary {
	result := make([]Boundary, 0, len(boundaries))
	for _, b := range boundaries {
		if b.Height >= minHeight && b.Height > 0 {
			result = append(result, b)
		}
	}
	slices.SortStableFunc(result, func(a, b Boundary) int {
		switch {
		case a.Top < b.Top:
			return -1
		case a.Top > b.Top:
			return 1
		default:
			return 0
		}
	})
	return result
}

// ScaleBoundaries converts boundaries from container pixels to bitmap pixels.
func ScaleBoundaries(boundaries []Boundary, scale float64) []Boundary {
	result := make([]Boundary, 0, len(boundaries))
	for _, b := range boundaries {
		result = append(result, Boundary{Top: b.Top * scale, Height: b.Height * scale})
	}
	return result
}

// HasNamedSegments reports whether the segments are exactly the tagged regions 1..NamedSegmentCount,
// each with a positive height.
func HasNamedSegments(segments []Segment) bool {
	if len(segments) != NamedSegmentCount {
		return false
	}
	seen := make(map[int]bool, NamedSegmentCount)
	for _, s := range segments {
		if s.Index < 1 || s.Index > NamedSegmentCount || seen[s.Index] || s.Bottom <= s.Top {
			return false
		}
		seen[s.Index] = true
	}
	return true
}

// NamedSegmentSlices maps each segment onto one slice, padded by guard and clamped to the bitmap.
// Segments are given in container pixels and scaled to bitmap pixels.
func NamedSegmentSlices(segments []Segment, scale, guard float64, bitmapHeight int) []Slice {
	ordered := slices.Clone(segments)
	slices.SortFunc(ordered, func(a, b Segment) int {
		return a.Index - b.Index
	})

	result := make([]Slice, 0, len(ordered))
	for _, s := range ordered {
		top := max(0, int(math.Floor(s.Top*scale-guard)))
		bottom := min(bitmapHeight, int(math.Ceil(s.Bottom*scale+guard)))
		if bottom <= top {
			continue
		}
		result = append(result, Slice{Top: top, Height: bottom - top})
	}
	return result
}

// GenericSlices walks the bitmap top to bottom in page-height steps. A cut is snapped to just
// above the bottom of a block ending inside the tolerance window before the naive cut, so the
// block stays on one page. When no such block exists, a page-sized block crossing the naive cut
// is pushed whole to the next page. Slice heights always sum to bitmapHeight.
func GenericSlices(bitmapHeight, pageHeight int, blocks []Boundary, cfg SliceConfig) []Slice {
	if bitmapHeight <= 0 {
		return []Slice{}
	}
	if pageHeight <= 0 {
		pageHeight = bitmapHeight
	}
	maxSlices := max(cfg.MaxSlices, 1)

	var result []Slice
	pos := 0
	for pos < bitmapHeight {
		naive := pos + pageHeight
		if naive >= bitmapHeight || len(result) == maxSlices-1 {
			result = append(result, Slice{Top: pos, Height: bitmapHeight - pos})
			break
		}

		cut := snapCut(pos, naive, blocks, cfg)
		if cut == naive {
			cut = deferCut(pos, naive, pageHeight, blocks, cfg)
		}
		result = append(result, Slice{Top: pos, Height: cut - pos})
		pos = cut
	}
	return result
}

func snapCut(pos, naive int, blocks []Boundary, cfg SliceConfig) int {
	best := -1
	for _, b := range blocks {
		bottom := b.Bottom()
		if bottom > float64(naive) || bottom < float64(naive)-cfg.Tolerance {
			continue
		}
		// the block must have started before the cut and not been consumed yet
		if b.Top >= float64(naive) || bottom <= float64(pos) {
			continue
		}
		cut := int(math.Floor(bottom - cfg.BleedGuard))
		if float64(cut-pos) < cfg.MinAdvance || cut <= pos {
			continue
		}
		if tearsBlock(cut, blocks, cfg.BleedGuard) {
			continue
		}
		if cut > best {
			best = cut
		}
	}
	if best < 0 {
		return naive
	}
	return best
}

// deferCut moves the cut above the page-sized blocks the naive cut would split. Blocks taller
// than a page are split regardless.
func deferCut(pos, naive, pageHeight int, blocks []Boundary, cfg SliceConfig) int {
	top := math.Inf(1)
	for _, b := range blocks {
		if b.Height > float64(pageHeight) {
			continue
		}
		if b.Top < float64(naive) && b.Bottom() > float64(naive) {
			top = math.Min(top, b.Top)
		}
	}
	if math.IsInf(top, 1) {
		return naive
	}

	cut := int(math.Floor(top - cfg.BleedGuard))
	if cut <= pos || float64(cut-pos) < cfg.MinAdvance {
		return naive
	}
	return cut
}

// tearsBlock reports whether cut lands inside a block, short of that block's bleed zone.
func tearsBlock(cut int, blocks []Boundary, guard float64) bool {
	for _, b := range blocks {
		if float64(cut) > b.Top && cut < int(math.Floor(b.Bottom()-guard)) {
			return true
		}
	}
	return false
}
