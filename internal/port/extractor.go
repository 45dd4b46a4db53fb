package port

import (
	"context"

	"expenso/internal/domain"
)

// ExtractInput carries the raw artifact pair for record extraction.
type ExtractInput struct {
	PrimaryBytes []byte
	ReceiptBytes []byte
	ContentType  string
}

// RecordExtractor turns the uploaded document pair into structured per-person
// records. Extraction is a black box to the rest of the system; the engine
// only ever sees the resulting records.
type RecordExtractor interface {
	Extract(ctx context.Context, input ExtractInput) ([]domain.ExpenseRecord, error)
}
