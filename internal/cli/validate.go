package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/presentation/tui"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/value"
)

// ValidationReport is the outcome of one validate run.
type ValidationReport struct {
	Schema string `json:"schema"`
	Valid  bool   `json:"valid"`
	Key    string `json:"key,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Validate checks data against the schema at uri. Invalid data is reported,
// not returned as an error; the error covers failures to run the check.
func Validate(ctx context.Context, engine *autoparse.Engine, uri string, data []byte) (ValidationReport, error) {
	decoded, err := value.DecodeJSON(data)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("data is not valid JSON: %w", err)
	}

	report := ValidationReport{Schema: uri, Valid: true}
	err = engine.Validate(ctx, uri, decoded)
	var verr *domain.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		report.Valid, report.Key, report.Error = false, verr.Key, err.Error()
	case errors.Is(err, domain.ErrTypeMismatch):
		report.Valid, report.Error = false, err.Error()
	default:
		return ValidationReport{}, err
	}
	return report, nil
}

// PrintReport writes the report as a status line, or as JSON.
func PrintReport(w io.Writer, report ValidationReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if report.Valid {
		_, err := fmt.Fprintln(w, tui.Status(true, fmt.Sprintf("valid against %s", report.Schema)))
		return err
	}
	_, err := fmt.Fprintln(w, tui.Status(false, report.Error))
	return err
}
