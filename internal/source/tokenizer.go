package source

import (
	"errors"
	"strings"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

type tokState int

const (
	stFieldStart tokState = iota
	stUnquoted
	stQuoted
	stQuoteInQuoted // saw '"' inside a quoted field: escape or close
	stAfterQuoted
)

// splitRow tokenizes one CSV line. Fields may be wrapped in double quotes, in
// which case they can contain commas and "" escapes a literal quote.
// Whitespace around unquoted fields and outside quotes is dropped.
func splitRow(line string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		state  = stFieldStart
	)

	emit := func(trim bool) {
		s := cur.String()
		if trim {
			s = strings.TrimSpace(s)
		}
		fields = append(fields, s)
		cur.Reset()
	}

	for _, r := range line {
		switch state {
		case stFieldStart:
			switch r {
			case '"':
				state = stQuoted
			case ',':
				emit(true)
			case ' ', '\t':
			default:
				cur.WriteRune(r)
				state = stUnquoted
			}

		case stUnquoted:
			switch r {
			case ',':
				emit(true)
				state = stFieldStart
			case '"':
				return nil, errUnbalancedQuotes
			default:
				cur.WriteRune(r)
			}

		case stQuoted:
			if r == '"' {
				state = stQuoteInQuoted
			} else {
				cur.WriteRune(r)
			}

		case stQuoteInQuoted:
			switch r {
			case '"':
				cur.WriteRune('"')
				state = stQuoted
			case ',':
				emit(false)
				state = stFieldStart
			case ' ', '\t':
				state = stAfterQuoted
			default:
				return nil, errUnbalancedQuotes
			}

		case stAfterQuoted:
			switch r {
			case ',':
				emit(false)
				state = stFieldStart
			case ' ', '\t':
			default:
				return nil, errUnbalancedQuotes
			}
		}
	}

	switch state {
	case stQuoted:
		return nil, errUnbalancedQuotes
	case stQuoteInQuoted, stAfterQuoted:
		emit(false)
	default:
		emit(true)
	}
	return fields, nil
}

// record is one logical CSV row and the physical line it starts on.
type record struct {
	line int
	text string
}

// splitRecords breaks text into logical rows. A newline inside a quoted
// field belongs to the field, so the row continues on the next line. CR
// before each newline is dropped. A quote left open runs to the end of the
// text and fails later in splitRow.
func splitRecords(text string) []record {
	var (
		rows    []record
		cur     strings.Builder
		start   = 1
		lineNo  = 1
		inQuote bool
	)
	for _, phys := range strings.Split(text, "\n") {
		phys = strings.TrimSuffix(phys, "\r")
		if inQuote {
			cur.WriteByte('\n')
		} else {
			start = lineNo
		}
		cur.WriteString(phys)
		// "" escapes flip the parity twice, so odd counts mean an open quote.
		if strings.Count(phys, `"`)%2 == 1 {
			inQuote = !inQuote
		}
		if !inQuote {
			rows = append(rows, record{line: start, text: cur.String()})
			cur.Reset()
		}
		lineNo++
	}
	if inQuote {
		rows = append(rows, record{line: start, text: cur.String()})
	}
	return rows
}
