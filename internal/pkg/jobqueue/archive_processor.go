package jobqueue

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/archive"
)

// ObjectUploader is the part of the archive client the archive job needs.
type ObjectUploader interface {
	Config() *archive.Config
	PutBytes(ctx context.Context, objectKey string, data []byte, contentType string) (*archive.UploadResult, error)
}

// DocumentArchiveHandler uploads the rendered PDF of a document and records
// the object key on its row.
func DocumentArchiveHandler(uploader ObjectUploader, db *gorm.DB) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := DocumentArchivePayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("failed to parse archive job payload: %w", err)
		}
		if payload.DocumentID == "" || payload.FilePath == "" {
			return fmt.Errorf("archive job %s is missing document id or file path", job.ID)
		}

		data, err := os.ReadFile(payload.FilePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", payload.FilePath, err)
		}

		generatedAt := payload.GeneratedAt
		if generatedAt.IsZero() {
			generatedAt = time.Now()
		}
		key := uploader.Config().ObjectKey(payload.DocumentID, generatedAt)
		result, err := uploader.PutBytes(ctx, key, data, "application/pdf")
		if err != nil {
			return err
		}

		err = db.WithContext(ctx).Model(&models.GeneratedDocument{}).
			Where("document_id = ?", payload.DocumentID).
			Update("archive_key", result.ObjectKey).Error
		if err != nil {
			return fmt.Errorf("failed to record archive key: %w", err)
		}
		log.Infof("[Archive] Document %s archived to s3://%s/%s", payload.DocumentID, result.BucketName, result.ObjectKey)
		return nil
	}
}

// EnqueueMissingArchives schedules archive jobs for rendered documents that
// have no object key yet and were generated before olderThan.
func (q *Queue) EnqueueMissingArchives(ctx context.Context, db *gorm.DB, olderThan time.Time, limit int) (int, error) {
	var docs []models.GeneratedDocument
	err := db.WithContext(ctx).
		Where("file_path <> '' AND (archive_key IS NULL OR archive_key = '') AND generated_at < ?", olderThan).
		Order("id").Limit(limit).
		Find(&docs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find unarchived documents: %w", err)
	}

	enqueued := 0
	for _, doc := range docs {
		payload := DocumentArchivePayload{DocumentID: doc.DocumentID, FilePath: doc.FilePath}
		if doc.GeneratedAt != nil {
			payload.GeneratedAt = *doc.GeneratedAt
		}
		if _, err := q.EnqueueDocumentArchive(ctx, payload); err != nil {
			log.Errorf("[Archive] Failed to enqueue retry for document %s: %v", doc.DocumentID, err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}
