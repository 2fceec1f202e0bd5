package pdf

import (
	"errors"
	"fmt"
)

type ErrHiddenContainerMissing struct {
	error
}

func NewErrHiddenContainerMissing(id string) *ErrHiddenContainerMissing {
	return &ErrHiddenContainerMissing{fmt.Errorf("hidden container %s is missing from the document", id)}
}

type ErrCanvasContextUnavailable struct {
	error
}

func NewErrCanvasContextUnavailable(reason string) *ErrCanvasContextUnavailable {
	return &ErrCanvasContextUnavailable{fmt.Errorf("canvas context unavailable: %s", reason)}
}

var errEmptyBitmap = errors.New("rasterized bitmap is empty")
