package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Annotation columns added on top of the source header union, per sink.
var (
	validAnnotations    = []string{"processed_at", "correlation_id", "source_file"}
	rejectedAnnotations = []string{"rejection_reasons", "rejected_at", "correlation_id", "row_number", "source_file"}
)

// ParseSource reads delimited text with a header row into records. The
// header order is preserved for serializing output artifacts.
func ParseSource(r io.Reader) ([]string, []Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("source has no header row")
		}
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row %d: %w", len(records)+2, err)
		}

		var rec Record
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec.setField(name, value)
		}
		records = append(records, rec)
	}

	return header, records, nil
}

// MarshalValid serializes the processed artifact: source columns in header
// order plus the valid-path annotations.
func MarshalValid(header []string, records []ValidRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append(append([]string{}, header...), validAnnotations...)); err != nil {
		return nil, err
	}

	for _, rec := range records {
		row := make([]string, 0, len(header)+len(validAnnotations))
		for _, name := range header {
			row = append(row, rec.Field(name))
		}
		row = append(row,
			rec.ProcessedAt.UTC().Format(time.RFC3339),
			rec.CorrelationID,
			rec.SourceFile,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// MarshalRejected serializes the rejected artifact: source columns in header
// order plus the rejection metadata.
func MarshalRejected(header []string, records []InvalidRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append(append([]string{}, header...), rejectedAnnotations...)); err != nil {
		return nil, err
	}

	for _, rec := range records {
		row := make([]string, 0, len(header)+len(rejectedAnnotations))
		for _, name := range header {
			row = append(row, rec.Field(name))
		}
		row = append(row,
			rec.RejectionReasons,
			rec.RejectedAt.UTC().Format(time.RFC3339),
			rec.CorrelationID,
			strconv.Itoa(rec.RowNumber),
			rec.SourceFile,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
