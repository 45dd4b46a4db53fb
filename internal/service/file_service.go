package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"expenso/internal/config"
	"expenso/internal/domain"
	"expenso/internal/port"
	"expenso/internal/recon"
)

// ArtifactUploadInput is the DTO for uploading one submission artifact.
type ArtifactUploadInput struct {
	OwnerID uuid.UUID
	Kind    domain.ArtifactKind
	File    multipart.File
	Header  *multipart.FileHeader
}

// FileService defines the artifact management contract. UploadArtifact
// returns the raw bytes alongside the metadata because the submission flow
// needs them for extraction before the request returns.
type FileService interface {
	UploadArtifact(ctx context.Context, input ArtifactUploadInput) (*domain.FileMeta, []byte, error)
	GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	GetDownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, ownerID, fileID uuid.UUID) error
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) UploadArtifact(ctx context.Context, input ArtifactUploadInput) (*domain.FileMeta, []byte, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}

	// The whole artifact is read up front: the fingerprint must cover the
	// exact bytes that land in storage, and extraction needs them anyway.
	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}

	contentHash := recon.FingerprintBytes(data)

	contentType := domain.AllowedFileTypes[fileType]
	if detected := http.DetectContentType(firstN(data, 512)); strings.HasPrefix(detected, "application/pdf") {
		contentType = domain.AllowedFileTypes[domain.FileTypePDF]
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("owners/%s/files/%s/%s", input.OwnerID, fileID, input.Header.Filename)

	meta := &domain.FileMeta{
		ID:           fileID,
		OwnerID:      input.OwnerID,
		Kind:         input.Kind,
		FileName:     fileID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		ContentHash:  contentHash,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	log.Printf("fileService.UploadArtifact: uploading %s artifact %s (%d bytes, hash %.12s) for owner %s",
		input.Kind, input.Header.Filename, len(data), contentHash, input.OwnerID)

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		log.Printf("fileService.UploadArtifact: failed to create file metadata: %v", err)
		return nil, nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata: map[string]string{
			"artifact-kind":  string(input.Kind),
			"content-sha256": contentHash,
		},
	})
	if err != nil {
		log.Printf("fileService.UploadArtifact: S3 upload failed for file %s: %v", meta.ID, err)
		_ = s.fileRepo.UpdateStatus(ctx, meta.OwnerID, meta.ID, domain.FileStatusFailed)
		return nil, nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, meta.OwnerID, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded

	return meta, data, nil
}

func (s *fileService) GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error) {
	return s.fileRepo.GetByID(ctx, ownerID, fileID)
}

func (s *fileService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	return s.fileRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *fileService) GetDownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (string, error) {
	meta, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, ownerID, fileID uuid.UUID) error {
	log.Printf("fileService.Delete: deleting file %s for owner %s", fileID, ownerID)

	meta, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		log.Printf("fileService.Delete: failed to delete from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.fileRepo.Delete(ctx, ownerID, fileID)
}

func firstN(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
