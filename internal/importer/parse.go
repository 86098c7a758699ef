package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ValidationError marks input problems the caller should report to the
// uploader rather than retry.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func badUpload(message string) *ValidationError {
	return &ValidationError{Status: http.StatusBadRequest, Message: message}
}

func unprocessable(message string) *ValidationError {
	return &ValidationError{Status: http.StatusUnprocessableEntity, Message: message}
}

// Row maps normalized header names to raw cell values. A nil value means the
// record was shorter than the header.
type Row map[string]*string

// Batch is one parsed upload: the normalized header in file order plus every
// data row keyed by that header.
type Batch struct {
	Header []string
	Rows   []Row

	headerSet map[string]struct{}
}

func (b *Batch) HasColumn(name string) bool {
	_, ok := b.headerSet[name]
	return ok
}

// NormalizeHeader canonicalizes one header cell: trimmed, lowercased, with
// spaces and hyphens turned into underscores. "Contact Email", "contact-email"
// and "contact_email" all resolve to the same column.
func NormalizeHeader(h string) string {
	normalized := strings.ToLower(strings.TrimSpace(h))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}

// ParseCSV reads an entire upload into memory. A record holding one empty
// field is a blank separator and skipped; anything else is a data row, with
// short records padded with nils and cells beyond the header dropped.
func ParseCSV(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, badUpload("CSV is empty or the header row is missing")
		}
		return nil, badUpload(fmt.Sprintf("CSV parsing failed: %v", err))
	}

	header := make([]string, len(headerRecord))
	headerSet := make(map[string]struct{}, len(headerRecord))
	for i, cell := range headerRecord {
		name := NormalizeHeader(cell)
		header[i] = name
		headerSet[name] = struct{}{}
	}

	batch := &Batch{Header: header, headerSet: headerSet}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, badUpload(fmt.Sprintf("CSV parsing failed: %v", err))
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				value := record[i]
				row[col] = &value
			} else {
				row[col] = nil
			}
		}
		batch.Rows = append(batch.Rows, row)
	}

	if len(batch.Rows) == 0 {
		return nil, badUpload("CSV contains no data rows")
	}
	return batch, nil
}

// stripBOM drops a UTF-8 byte order mark so the first header cell matches.
func stripBOM(r io.Reader) io.Reader {
	buffered := bufio.NewReader(r)
	lead, err := buffered.Peek(3)
	if err == nil && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		buffered.Discard(3)
	}
	return buffered
}
