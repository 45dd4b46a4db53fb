package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"expenso/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Person Name",
	"Person Ref",
	"Primary Amount",
	"Receipt Amount",
	"Difference",
	"Status",
	"Issues",
	"Created At",
}

// Writer wraps csv.Writer for exporting expense records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of expense records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.ExpenseRecord) error {
	for i := range records {
		row := recordToRow(&records[i])
		if err := w.csv.Write(row); err != nil {
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

func recordToRow(rec *domain.ExpenseRecord) []string {
	row := make([]string, len(columns))
	row[0] = rec.PersonName
	row[1] = rec.PersonRef
	row[2] = formatMoney(rec.PrimaryAmount)
	row[3] = formatMoney(rec.SecondaryAmount)
	row[4] = formatMoney(rec.PrimaryAmount - rec.SecondaryAmount)
	row[5] = string(rec.Status)
	row[6] = formatIssues(rec.Issues())
	row[7] = rec.CreatedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatIssues(flags []domain.IssueFlag) string {
	if len(flags) == 0 {
		return ""
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, "; ")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: batch_{short_id}_{YYYY-MM-DD}.csv
func BuildFilename(batchID string) string {
	short := batchID
	if len(short) > 8 {
		short = short[:8]
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("batch_%s_%s.csv", SanitizeFilename(short), date)
}
