package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"papertrail/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the header row shared by every history export format.
var Columns = []string{
	"Entry ID",
	"Document ID",
	"Transfer Type",
	"From",
	"To",
	"Performed By",
	"Transferred At",
	"Expected Return",
	"Returned At",
	"Notes",
	"Return Notes",
}

// Writer wraps csv.Writer for exporting transfer history as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteEntries converts a batch of history entries to CSV rows and writes them.
func (w *Writer) WriteEntries(entries []domain.TransferHistoryEntry) error {
	for i := range entries {
		if err := w.csv.Write(EntryRow(&entries[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// EntryRow converts a single history entry to a row matching Columns.
func EntryRow(e *domain.TransferHistoryEntry) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		strconv.FormatInt(e.DocumentID, 10),
		string(e.TransferType),
		FromLabel(e),
		ToLabel(e),
		"user:" + strconv.FormatInt(e.PerformedBy, 10),
		e.TransferredAt.UTC().Format(time.RFC3339),
		formatTime(e.ExpectedReturnDate),
		formatTime(e.ReturnedAt),
		e.Notes,
		e.ReturnNotes,
	}
}

// FromLabel describes the party that handed the copy over. Checkouts have none.
func FromLabel(e *domain.TransferHistoryEntry) string {
	switch {
	case e.FromUser != nil:
		return "user:" + strconv.FormatInt(*e.FromUser, 10)
	case e.FromAgent != nil:
		return "agent:" + strconv.FormatInt(*e.FromAgent, 10)
	case e.FromClientName != nil:
		return "client:" + *e.FromClientName
	}
	return ""
}

// ToLabel describes the party that received the copy.
func ToLabel(e *domain.TransferHistoryEntry) string {
	switch {
	case e.ToUser != nil:
		return "user:" + strconv.FormatInt(*e.ToUser, 10)
	case e.ToAgent != nil:
		return "agent:" + strconv.FormatInt(*e.ToAgent, 10)
	case e.ToClientName != nil:
		return "client:" + *e.ToClientName
	case e.ToClientID != nil:
		return "client:" + strconv.FormatInt(*e.ToClientID, 10)
	}
	return ""
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// BuildFilename returns the Content-Disposition filename for a document's history.
// Format: custody_history_{document_id}_{YYYY-MM-DD}.{ext}
func BuildFilename(documentID int64, ext string, now time.Time) string {
	return fmt.Sprintf("custody_history_%d_%s.%s", documentID, now.Format("2006-01-02"), ext)
}
