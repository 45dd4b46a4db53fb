// Package csvledger extracts per-person expense records from a pair of CSV
// ledgers. It is the default implementation of port.RecordExtractor; the rest
// of the system only ever sees the records it produces.
package csvledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"expenso/internal/domain"
	"expenso/internal/port"
)

type extractor struct{}

// NewExtractor creates a CSV ledger extractor.
func NewExtractor() port.RecordExtractor {
	return &extractor{}
}

// Extract parses the primary ledger into one record per person and overlays
// receipt ledger totals as the secondary amount. Duplicate persons in the
// primary ledger are merged (amounts summed) and flagged rather than
// rejected, so the natural key stays unique within the batch.
func (e *extractor) Extract(ctx context.Context, input port.ExtractInput) ([]domain.ExpenseRecord, error) {
	primary, err := parseLedger(input.PrimaryBytes)
	if err != nil {
		return nil, fmt.Errorf("primary ledger: %w: %v", domain.ErrExtractionFailed, err)
	}
	receipts, err := parseLedger(input.ReceiptBytes)
	if err != nil {
		return nil, fmt.Errorf("receipt ledger: %w: %v", domain.ErrExtractionFailed, err)
	}

	receiptTotals := make(map[domain.RecordKey]float64, len(receipts))
	for _, row := range receipts {
		receiptTotals[row.key] += row.amount
	}

	byKey := make(map[domain.RecordKey]*domain.ExpenseRecord, len(primary))
	order := make([]domain.RecordKey, 0, len(primary))

	for _, row := range primary {
		if existing, ok := byKey[row.key]; ok {
			existing.PrimaryAmount += row.amount
			flags := existing.Issues()
			if !hasFlag(flags, domain.IssueDuplicatePerson) {
				flags = append(flags, domain.IssueDuplicatePerson)
				if err := existing.SetIssues(flags); err != nil {
					return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
				}
			}
			continue
		}

		rec := &domain.ExpenseRecord{
			ID:              uuid.New(),
			PersonName:      row.key.Name,
			PersonRef:       row.key.Ref,
			PrimaryAmount:   row.amount,
			SecondaryAmount: receiptTotals[row.key],
			Status:          domain.RecordStatusPending,
		}
		if err := rec.SetIssues(nil); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}
		byKey[row.key] = rec
		order = append(order, row.key)
	}

	records := make([]domain.ExpenseRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *byKey[key])
	}
	return records, nil
}

type ledgerRow struct {
	key    domain.RecordKey
	amount float64
}

// parseLedger reads a CSV with a header containing person_name, person_ref
// and amount columns, in any order. Blank lines are skipped.
func parseLedger(data []byte) ([]ledgerRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	nameIdx, refIdx, amountIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "person_name", "name":
			nameIdx = i
		case "person_ref", "ref", "employee_id":
			refIdx = i
		case "amount", "total":
			amountIdx = i
		}
	}
	if nameIdx < 0 || refIdx < 0 || amountIdx < 0 {
		return nil, fmt.Errorf("header missing person_name/person_ref/amount columns")
	}

	var rows []ledgerRow
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// A parse error mid-file (bad quoting, wrong field count) must fail
		// the whole ledger; truncating it would poison later reconciliations.
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		line++

		name := strings.TrimSpace(fields[nameIdx])
		ref := strings.TrimSpace(fields[refIdx])
		if name == "" && ref == "" {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(fields[amountIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q", line, fields[amountIdx])
		}

		rows = append(rows, ledgerRow{
			key:    domain.RecordKey{Name: name, Ref: ref},
			amount: amount,
		})
	}

	return rows, nil
}

func hasFlag(flags []domain.IssueFlag, flag domain.IssueFlag) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
