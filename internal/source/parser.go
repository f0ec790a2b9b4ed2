// Package source discovers and parses usage-report CSV exports.
package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cusage/internal/model"
)

// Column labels of the export header, in file order.
const (
	ColTimestamp         = "Timestamp"
	ColUser              = "User"
	ColModel             = "Model"
	ColRequestsUsed      = "Requests Used"
	ColExceedsQuota      = "Exceeds Monthly Quota"
	ColTotalMonthlyQuota = "Total Monthly Quota"
)

// RequiredColumns lists the header labels every export must carry.
var RequiredColumns = []string{
	ColTimestamp,
	ColUser,
	ColModel,
	ColRequestsUsed,
	ColExceedsQuota,
	ColTotalMonthlyQuota,
}

// Literal tokens of the "Exceeds Monthly Quota" column.
const (
	tokenTrue  = "True"
	tokenFalse = "False"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseFile reads and parses the export at path.
func ParseFile(path string) ([]model.UsageRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// ParseReader reads r fully and parses it.
func ParseReader(r io.Reader) ([]model.UsageRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return Parse(string(data))
}

// Parse validates a complete export and returns its records in file order.
// The first invalid row aborts the parse; no partial result is returned.
func Parse(text string) ([]model.UsageRecord, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, &IngestionError{Kind: KindEmptyInput}
	}
	if strings.IndexByte(text, 0) >= 0 {
		return nil, &IngestionError{Kind: KindBinaryContent}
	}

	rows := splitRecords(text)
	headerSeen := false
	records := make([]model.UsageRecord, 0, len(rows))

	for _, row := range rows {
		if strings.TrimSpace(row.text) == "" {
			continue
		}

		fields, err := splitRow(row.text)
		if err != nil {
			return nil, &IngestionError{Kind: KindMalformedRow, Line: row.line}
		}

		if !headerSeen {
			if err := checkHeader(fields, row.line); err != nil {
				return nil, err
			}
			headerSeen = true
			continue
		}

		if len(fields) != len(RequiredColumns) {
			return nil, &IngestionError{Kind: KindMalformedRow, Line: row.line}
		}
		rec, err := validateRecord(fields, row.line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Field positions, in RequiredColumns order.
const (
	fieldTimestamp = iota
	fieldUser
	fieldModel
	fieldRequests
	fieldExceeds
	fieldQuota
)

func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.ToLower(strings.TrimSpace(s))
}

// checkHeader requires exactly the RequiredColumns labels in file order.
// Labels compare case- and quote-insensitively.
func checkHeader(fields []string, lineNo int) error {
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[normalizeLabel(f)] = true
	}

	var missing []string
	for _, c := range RequiredColumns {
		if !present[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &IngestionError{Kind: KindMissingColumns, Line: lineNo, Columns: missing}
	}
	if len(fields) != len(RequiredColumns) {
		return &IngestionError{Kind: KindMalformedRow, Line: lineNo}
	}
	for i, c := range RequiredColumns {
		if normalizeLabel(fields[i]) != strings.ToLower(c) {
			return &IngestionError{Kind: KindMalformedRow, Line: lineNo}
		}
	}
	return nil
}

// validateRecord converts one tokenized row into a record.
func validateRecord(fields []string, lineNo int) (model.UsageRecord, error) {
	rawTS := strings.TrimSpace(fields[fieldTimestamp])
	ts, ok := parseTimestamp(rawTS)
	if !ok {
		return model.UsageRecord{}, &IngestionError{Kind: KindInvalidTimestamp, Line: lineNo, Value: rawTS}
	}

	user := strings.TrimSpace(fields[fieldUser])
	if user == "" {
		return model.UsageRecord{}, &IngestionError{Kind: KindEmptyField, Line: lineNo, Columns: []string{ColUser}}
	}
	modelName := strings.TrimSpace(fields[fieldModel])
	if modelName == "" {
		return model.UsageRecord{}, &IngestionError{Kind: KindEmptyField, Line: lineNo, Columns: []string{ColModel}}
	}

	rawReq := strings.TrimSpace(fields[fieldRequests])
	requests, ok := parseRequests(rawReq)
	if !ok {
		return model.UsageRecord{}, &IngestionError{Kind: KindInvalidRequestsUsed, Line: lineNo, Value: rawReq}
	}

	rawExceeds := strings.TrimSpace(fields[fieldExceeds])
	var exceeds bool
	switch rawExceeds {
	case tokenTrue:
		exceeds = true
	case tokenFalse:
	default:
		return model.UsageRecord{}, &IngestionError{Kind: KindInvalidExceedsQuota, Line: lineNo, Value: rawExceeds}
	}

	return model.UsageRecord{
		Timestamp:         ts,
		User:              user,
		Model:             modelName,
		RequestsUsed:      requests,
		ExceedsQuota:      exceeds,
		TotalMonthlyQuota: strings.TrimSpace(fields[fieldQuota]),
	}, nil
}

// parseTimestamp accepts RFC 3339 and the common ISO-8601 variants. Values
// without a zone are read as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRequests accepts a finite, non-negative decimal number.
func parseRequests(s string) (float64, bool) {
	if !isDecimal(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	if v == 0 {
		// "-0" parses as negative zero.
		v = 0
	}
	return v, true
}

// isDecimal rejects the hex, underscore and Inf/NaN spellings ParseFloat
// would otherwise accept.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	digits := false
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' || c == 'e' || c == 'E':
		case (c == '+' || c == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return digits
}
