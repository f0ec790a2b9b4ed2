package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies ingestion failures.
type ErrorKind int

// Ingestion error kinds.
const (
	KindEmptyInput ErrorKind = iota + 1
	KindBinaryContent
	KindMissingColumns
	KindMalformedRow
	KindInvalidTimestamp
	KindInvalidRequestsUsed
	KindInvalidExceedsQuota
	KindEmptyField
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindBinaryContent:
		return "binary_content"
	case KindMissingColumns:
		return "missing_columns"
	case KindMalformedRow:
		return "malformed_row"
	case KindInvalidTimestamp:
		return "invalid_timestamp"
	case KindInvalidRequestsUsed:
		return "invalid_requests_used"
	case KindInvalidExceedsQuota:
		return "invalid_exceeds_quota"
	case KindEmptyField:
		return "empty_field"
	default:
		return "unknown"
	}
}

// IngestionError describes why an export was rejected. Line is the 1-based
// physical line in the input (the header is line 1). Value holds the raw
// offending field and Columns the missing header labels or, for
// KindEmptyField, the empty column.
type IngestionError struct {
	Kind    ErrorKind
	Line    int
	Value   string
	Columns []string
}

// Sentinels for errors.Is. Only the kind is compared.
var (
	ErrEmptyInput          = &IngestionError{Kind: KindEmptyInput}
	ErrBinaryContent       = &IngestionError{Kind: KindBinaryContent}
	ErrMissingColumns      = &IngestionError{Kind: KindMissingColumns}
	ErrMalformedRow        = &IngestionError{Kind: KindMalformedRow}
	ErrInvalidTimestamp    = &IngestionError{Kind: KindInvalidTimestamp}
	ErrInvalidRequestsUsed = &IngestionError{Kind: KindInvalidRequestsUsed}
	ErrInvalidExceedsQuota = &IngestionError{Kind: KindInvalidExceedsQuota}
	ErrEmptyField          = &IngestionError{Kind: KindEmptyField}
)

func (e *IngestionError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "File is empty. Please upload a CSV file with data."
	case KindBinaryContent:
		return "File appears to be binary. Please upload a text-based CSV file."
	case KindMissingColumns:
		return "CSV file is missing required columns: " + strings.Join(e.Columns, ", ")
	case KindMalformedRow:
		return fmt.Sprintf("Invalid CSV row format at line %d", e.Line)
	case KindInvalidTimestamp:
		return fmt.Sprintf("Invalid timestamp at line %d: %q", e.Line, e.Value)
	case KindInvalidRequestsUsed:
		return fmt.Sprintf("Invalid requests used at line %d: %q", e.Line, e.Value)
	case KindInvalidExceedsQuota:
		return fmt.Sprintf("Invalid exceeds quota value at line %d: %q (expected \"True\" or \"False\")", e.Line, e.Value)
	case KindEmptyField:
		col := ""
		if len(e.Columns) > 0 {
			col = e.Columns[0]
		}
		return fmt.Sprintf("Empty %s at line %d", col, e.Line)
	default:
		return "invalid CSV input"
	}
}

// Is reports whether target is an IngestionError of the same kind.
func (e *IngestionError) Is(target error) bool {
	var t *IngestionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// UserFacingMessage renders err the way the upload screen reports it.
func UserFacingMessage(err error) string {
	var ie *IngestionError
	if !errors.As(err, &ie) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch ie.Kind {
	case KindMissingColumns:
		return "Invalid CSV format: " + ie.Error()
	case KindInvalidTimestamp, KindInvalidRequestsUsed, KindInvalidExceedsQuota, KindEmptyField:
		return "Invalid data format: " + ie.Error()
	case KindMalformedRow:
		return "Invalid CSV structure: " + ie.Error()
	default:
		return ie.Error()
	}
}
