package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/storage"
	"github.com/localnerve/gigcrew/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ObjectStore issues transfer URLs for job file objects and removes them.
type ObjectStore interface {
	SignedUploadURL(objectKey, contentType string) storage.SignedURL
	SignedDownloadURL(objectKey, fileName string) storage.SignedURL
	Delete(objectKey string) error
}

// JobFileResult represents the API output format of a file's metadata
type JobFileResult struct {
	FileID           string    `json:"fileId"`
	JobID            string    `json:"jobId"`
	Area             string    `json:"area"`
	Category         string    `json:"category"`
	OriginalFileName string    `json:"originalFileName"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	UploadedByUserID string    `json:"uploadedByUserId"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// InitiateUploadResult pairs the new file's metadata with its upload URL.
type InitiateUploadResult struct {
	File   JobFileResult     `json:"file"`
	Upload storage.SignedURL `json:"upload"`
}

// ListFilesInput filters a job's files.
type ListFilesInput struct {
	Area     string `json:"area" validate:"omitempty,oneof=Shared Internal"`
	Category string `json:"category" validate:"max=64"`
}

// InitiateUploadInput describes a file about to be uploaded.
type InitiateUploadInput struct {
	Area             string `json:"area" validate:"required,oneof=Shared Internal"`
	Category         string `json:"category" validate:"required,max=64"`
	OriginalFileName string `json:"originalFileName" validate:"required,max=512"`
	MimeType         string `json:"mimeType" validate:"required,max=255"`
	SizeBytes        int64  `json:"sizeBytes" validate:"gte=0"`
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds the storage key of a job file.
func ObjectKey(jobID, fileID, fileName string) string {
	return fmt.Sprintf("jobs/%s/%s-%s", jobID, fileID, unsafeNameChars.ReplaceAllString(fileName, "_"))
}

func newJobFileResult(f *models.JobFile) JobFileResult {
	return JobFileResult{
		FileID:           f.FileID,
		JobID:            f.JobID,
		Area:             f.Area,
		Category:         f.Category,
		OriginalFileName: f.OriginalFileName,
		MimeType:         f.MimeType,
		SizeBytes:        f.SizeBytes,
		UploadedByUserID: f.UploadedByUserID,
		UploadedAt:       f.UploadedAt,
	}
}

// ListJobFiles returns live files, newest first. Internal files are hidden
// from callers without FilesReadInternal; asking for them explicitly is forbidden.
func ListJobFiles(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, input ListFilesInput) ([]JobFileResult, error) {
	access, err := RequireJobPermission(ctx, db, id, jobID, authz.JobRead)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	canSeeInternal := access.Can(authz.FilesReadInternal)
	if input.Area == models.FileAreaInternal && !canSeeInternal {
		return nil, types.Forbidden("Missing permission FilesReadInternal")
	}

	query := db.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "job_files")).
		Where("job_id = ?", jobID)
	switch {
	case input.Area != "":
		query = query.Where("area = ?", input.Area)
	case !canSeeInternal:
		query = query.Where("area = ?", models.FileAreaShared)
	}
	if input.Category != "" {
		query = query.Where("category = ?", input.Category)
	}

	var files []models.JobFile
	if err := query.Order("uploaded_at desc").Find(&files).Error; err != nil {
		return nil, err
	}

	results := make([]JobFileResult, 0, len(files))
	for i := range files {
		results = append(results, newJobFileResult(&files[i]))
	}
	return results, nil
}

// InitiateUpload records a file's metadata and returns a signed upload URL.
func InitiateUpload(ctx context.Context, db *gorm.DB, store ObjectStore, id *authz.Identity, jobID string, input InitiateUploadInput) (*InitiateUploadResult, error) {
	access, err := RequireJobPermission(ctx, db, id, jobID, authz.FilesUpload)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.Area == models.FileAreaInternal {
		if err := access.Require(authz.FilesReadInternal); err != nil {
			return nil, err
		}
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}

	fileID := uuid.NewString()
	file := models.JobFile{
		FileID:           fileID,
		JobID:            jobID,
		Area:             input.Area,
		Category:         input.Category,
		OriginalFileName: input.OriginalFileName,
		MimeType:         input.MimeType,
		SizeBytes:        input.SizeBytes,
		StorageObjectKey: ObjectKey(jobID, fileID, input.OriginalFileName),
		UploadedByUserID: id.UserID,
	}
	if err := db.WithContext(ctx).Create(&file).Error; err != nil {
		return nil, fmt.Errorf("create file metadata: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditFileUploaded,
		Summary:     "File uploaded: " + input.OriginalFileName,
	})

	return &InitiateUploadResult{
		File:   newJobFileResult(&file),
		Upload: store.SignedUploadURL(file.StorageObjectKey, input.MimeType),
	}, nil
}

// FileDownloadURL returns a signed download URL for a live file the caller can read.
func FileDownloadURL(ctx context.Context, db *gorm.DB, store ObjectStore, id *authz.Identity, jobID, fileID string) (*storage.SignedURL, error) {
	access, err := RequireJobPermission(ctx, db, id, jobID, authz.JobRead)
	if err != nil {
		return nil, err
	}

	file, err := findJobFile(ctx, db, jobID, fileID)
	if err != nil {
		return nil, err
	}

	perm := authz.FilesReadShared
	if file.Area == models.FileAreaInternal {
		perm = authz.FilesReadInternal
	}
	if err := access.Require(perm); err != nil {
		return nil, err
	}

	signed := store.SignedDownloadURL(file.StorageObjectKey, file.OriginalFileName)
	return &signed, nil
}

// DeleteJobFile soft deletes a file and removes its object. The object
// removal is best effort once the metadata delete has committed.
func DeleteJobFile(ctx context.Context, db *gorm.DB, store ObjectStore, id *authz.Identity, jobID, fileID string) error {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.FilesDelete); err != nil {
		return err
	}

	file, err := findJobFile(ctx, db, jobID, fileID)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Where("job_id = ? AND file_id = ?", jobID, fileID).Delete(&models.JobFile{})
	if result.Error != nil {
		return fmt.Errorf("delete file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("File not found")
	}

	if err := store.Delete(file.StorageObjectKey); err != nil {
		logging.L().Warn("file object removal failed",
			zap.String("jobId", jobID),
			zap.String("fileId", fileID),
			zap.Error(err))
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditFileDeleted,
		Summary:     "File deleted: " + file.OriginalFileName,
	})
	return nil
}

func findJobFile(ctx context.Context, db *gorm.DB, jobID, fileID string) (*models.JobFile, error) {
	var file models.JobFile
	err := db.WithContext(ctx).Where("job_id = ? AND file_id = ?", jobID, fileID).Take(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("File not found")
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}
