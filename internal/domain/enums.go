package domain

// ArtifactKind identifies which of the two documents in a submission a file is.
type ArtifactKind string

const (
	ArtifactPrimaryLedger ArtifactKind = "primary_ledger"
	ArtifactReceiptLedger ArtifactKind = "receipt_ledger"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeCSV: "text/csv",
	FileTypePDF: "application/pdf",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"csv": FileTypeCSV,
	"pdf": FileTypePDF,
}

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// BatchStatus represents the lifecycle of a batch. Completed and failed are
// terminal; only terminal batches are eligible as reconciliation baselines.
type BatchStatus string

const (
	BatchStatusPending     BatchStatus = "pending"
	BatchStatusQueued      BatchStatus = "queued"
	BatchStatusProcessing  BatchStatus = "processing"
	BatchStatusNeedsReview BatchStatus = "needs_review"
	BatchStatusCompleted   BatchStatus = "completed"
	BatchStatusFailed      BatchStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// RecordStatus represents the processing state of a single expense record.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusProcessed RecordStatus = "processed"
	RecordStatusCarried   RecordStatus = "carried" // copied unchanged from the baseline batch
	RecordStatusFlagged   RecordStatus = "flagged"
)

// IssueFlag categorizes a problem found on a record during processing.
type IssueFlag string

const (
	IssueMissingAmount   IssueFlag = "missing_amount"
	IssueNegativeAmount  IssueFlag = "negative_amount"
	IssueReceiptMismatch IssueFlag = "receipt_mismatch"
	IssueDuplicatePerson IssueFlag = "duplicate_person"
)

// Recommendation is the reconciliation engine's verdict for a new submission.
type Recommendation string

const (
	RecommendSkip   Recommendation = "skip_processing"
	RecommendDelta  Recommendation = "delta_processing"
	RecommendFull   Recommendation = "full_processing"
	RecommendReview Recommendation = "review_required"
)
