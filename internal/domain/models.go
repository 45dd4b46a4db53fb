package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated batch owner.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about one uploaded artifact. ContentHash is the
// SHA-256 hex digest of the file's exact bytes and doubles as its identity
// across the batch history.
type FileMeta struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	OwnerID      uuid.UUID    `db:"owner_id" json:"owner_id"`
	Kind         ArtifactKind `db:"kind" json:"kind"`
	FileName     string       `db:"file_name" json:"file_name"`
	OriginalName string       `db:"original_name" json:"original_name"`
	FileType     FileType     `db:"file_type" json:"file_type"`
	FileSize     int64        `db:"file_size" json:"file_size"`
	ContentHash  string       `db:"content_hash" json:"content_hash"`
	S3Bucket     string       `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string       `db:"s3_key" json:"s3_key"`
	ContentType  string       `db:"content_type" json:"content_type"`
	Status       FileStatus   `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Batch represents one processing run over a pair of uploaded artifacts.
// Once a batch reaches a terminal status it is immutable except for status
// transitions performed by the repository.
type Batch struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OwnerID         uuid.UUID      `db:"owner_id" json:"owner_id"`
	Status          BatchStatus    `db:"status" json:"status"`
	PrimaryFileID   uuid.UUID      `db:"primary_file_id" json:"primary_file_id"`
	ReceiptFileID   uuid.UUID      `db:"receipt_file_id" json:"receipt_file_id"`
	PrimaryHash     string         `db:"primary_hash" json:"primary_hash"`
	ReceiptHash     string         `db:"receipt_hash" json:"receipt_hash"`
	RecordCount     int            `db:"record_count" json:"record_count"`
	SuccessRate     float64        `db:"success_rate" json:"success_rate"`
	Recommendation  Recommendation `db:"recommendation" json:"recommendation"`
	BaselineBatchID *uuid.UUID     `db:"baseline_batch_id" json:"baseline_batch_id"`
	FailureReason   string         `db:"failure_reason" json:"failure_reason"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time     `db:"completed_at" json:"completed_at"`
}

// RecordKey is the composite natural key identifying the same person's record
// across batches. Neither field is unique or stable on its own, so both
// participate in equality. Comparable, usable directly as a map key.
type RecordKey struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// ExpenseRecord is one per-person line item within a batch. Within a batch
// the natural key is unique.
type ExpenseRecord struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	BatchID         uuid.UUID       `db:"batch_id" json:"batch_id"`
	OwnerID         uuid.UUID       `db:"owner_id" json:"owner_id"`
	PersonName      string          `db:"person_name" json:"person_name"`
	PersonRef       string          `db:"person_ref" json:"person_ref"`
	PrimaryAmount   float64         `db:"primary_amount" json:"primary_amount"`
	SecondaryAmount float64         `db:"secondary_amount" json:"secondary_amount"`
	IssueFlags      json.RawMessage `db:"issue_flags" json:"issue_flags"`
	Status          RecordStatus    `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Key returns the record's composite natural key.
func (r *ExpenseRecord) Key() RecordKey {
	return RecordKey{Name: r.PersonName, Ref: r.PersonRef}
}

// Issues decodes the JSONB issue flag array. A missing or empty column
// decodes to no flags.
func (r *ExpenseRecord) Issues() []IssueFlag {
	if len(r.IssueFlags) == 0 {
		return nil
	}
	var flags []IssueFlag
	if err := json.Unmarshal(r.IssueFlags, &flags); err != nil {
		return nil
	}
	return flags
}

// SetIssues encodes issue flags into the JSONB column.
func (r *ExpenseRecord) SetIssues(flags []IssueFlag) error {
	if flags == nil {
		flags = []IssueFlag{}
	}
	data, err := json.Marshal(flags)
	if err != nil {
		return err
	}
	r.IssueFlags = data
	return nil
}

// Stats holds aggregate counts for the dashboard.
type Stats struct {
	TotalBatches     int     `db:"total_batches" json:"total_batches"`
	CompletedBatches int     `db:"completed_batches" json:"completed_batches"`
	FailedBatches    int     `db:"failed_batches" json:"failed_batches"`
	PendingReview    int     `db:"pending_review" json:"pending_review"`
	TotalRecords     int     `db:"total_records" json:"total_records"`
	RecordsWithIssue int     `db:"records_with_issue" json:"records_with_issue"`
	AvgSuccessRate   float64 `db:"avg_success_rate" json:"avg_success_rate"`
}
