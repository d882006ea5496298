// Package documents stores rendered PDFs on disk and records them in the
// generated_documents table.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/app/repository"
	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/jobqueue"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
)

// ArchiveScheduler queues the upload of a stored document.
type ArchiveScheduler interface {
	EnqueueDocumentArchive(ctx context.Context, p jobqueue.DocumentArchivePayload) (*jobqueue.Job, error)
}

// Store implements pipeline.Persister.
type Store struct {
	dir      string
	repo     repository.DocumentRepository
	registry *catalog.Registry
	archiver ArchiveScheduler
}

// NewStore writes under dir. archiver may be nil when archiving is off.
func NewStore(dir string, repo repository.DocumentRepository, registry *catalog.Registry, archiver ArchiveScheduler) *Store {
	return &Store{dir: dir, repo: repo, registry: registry, archiver: archiver}
}

// Path returns where the PDF of a document generated in year/month lives.
func (s *Store) Path(doc *pipeline.Document) string {
	at := doc.GeneratedAt
	return filepath.Join(s.dir, fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), doc.DocumentID+".pdf")
}

// Persist writes the PDF, upserts its row and schedules the archive upload.
// A document without an id gets one. The PDF only lands at its final path
// once the row is saved.
func (s *Store) Persist(ctx context.Context, doc *pipeline.Document) error {
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}

	path := s.Path(doc)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	partial := path + ".part"
	if err := os.WriteFile(partial, doc.PDF, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", partial, err)
	}

	row := &models.GeneratedDocument{
		DocumentID:  doc.DocumentID,
		TemplateID:  doc.TemplateID,
		PageCount:   doc.PageCount,
		FinalPrice:  doc.FinalPrice,
		FileName:    filepath.Base(path),
		FilePath:    path,
		GeneratedAt: &doc.GeneratedAt,
	}
	if def, err := s.registry.Get(doc.TemplateID); err == nil {
		row.TemplateName = def.Name
	}
	if err := row.SetFieldValues(doc.Values); err != nil {
		discard(partial)
		return err
	}
	if err := s.repo.SaveRendered(row); err != nil {
		discard(partial)
		return fmt.Errorf("save document %s: %w", doc.DocumentID, err)
	}
	if err := os.Rename(partial, path); err != nil {
		discard(partial)
		return fmt.Errorf("move %s into place: %w", path, err)
	}

	if s.archiver != nil {
		_, err := s.archiver.EnqueueDocumentArchive(ctx, jobqueue.DocumentArchivePayload{
			DocumentID:  doc.DocumentID,
			FilePath:    path,
			GeneratedAt: doc.GeneratedAt,
		})
		if err != nil {
			// the archive retry sweep picks it up later
			log.Warnf("[Documents] archive of %s not scheduled: %v", doc.DocumentID, err)
		}
	}
	return nil
}

func discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("[Documents] could not remove %s: %v", path, err)
	}
}

// Open reads the stored PDF of a document row.
func (s *Store) Open(doc *models.GeneratedDocument) ([]byte, error) {
	if doc.FilePath == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(doc.FilePath)
}
