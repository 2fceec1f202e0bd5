package service

import (
	"fmt"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

// Messages reported when an export fails without a usable error message.
const (
	PDFFallbackMessage  = "Failed to generate PDF"
	HTMLFallbackMessage = "Failed to generate HTML file"
)

type ErrGeneratorUnavailable struct {
	error
}

func NewErrGeneratorUnavailable(kind types.ErrorKind) *ErrGeneratorUnavailable {
	return &ErrGeneratorUnavailable{fmt.Errorf("%s export is not available", kind)}
}

// exportFailure maps an export error to the result returned to the caller. Values that are not
// errors, and errors without a message, are reported with the fallback message of the kind.
func exportFailure(kind types.ErrorKind, fallback string, failure any) types.ExportResult {
	message := fallback
	if err, ok := failure.(error); ok && err != nil && err.Error() != "" {
		message = err.Error()
	}
	return types.Failed(kind, message)
}
