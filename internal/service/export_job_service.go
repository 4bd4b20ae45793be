package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/pkg/config"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/jobs"
	"github.com/noah-isme/navmenu-api/pkg/storage"
)

// ExportJobStatus tracks the lifecycle of an async export.
type ExportJobStatus string

const (
	ExportJobPending   ExportJobStatus = "PENDING"
	ExportJobCompleted ExportJobStatus = "COMPLETED"
	ExportJobFailed    ExportJobStatus = "FAILED"
)

// ExportJob is the status record returned to the admin polling an export.
type ExportJob struct {
	ID          string          `json:"id"`
	Format      ExportFormat    `json:"format"`
	Status      ExportJobStatus `json:"status"`
	Filename    string          `json:"filename,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ExportJobService runs configuration exports on a background worker pool and
// hands out signed download links for the finished documents.
type ExportJobService struct {
	exports   *ExportService
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	retention time.Duration
	logger    *zap.Logger

	queue *jobs.Queue

	mu      sync.RWMutex
	records map[string]*ExportJob
}

// NewExportJobService constructs the service. Start must be called before jobs
// can be enqueued.
func NewExportJobService(exports *ExportService, store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg config.ExportConfig, logger *zap.Logger) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	retention := cfg.URLTTL
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	s := &ExportJobService{
		exports:   exports,
		store:     store,
		signer:    signer,
		retention: retention,
		logger:    logger,
		records:   map[string]*ExportJob{},
	}
	s.queue = jobs.NewQueue("menu-export", s.handle, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the worker pool and the retention sweep for expired files.
func (s *ExportJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.sweep(ctx)
}

// sweep removes export documents whose download links have expired.
func (s *ExportJobService) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(s.retention)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

// Stop drains the worker pool.
func (s *ExportJobService) Stop() {
	s.queue.Stop()
}

// Enqueue registers an export job and schedules it for rendering.
func (s *ExportJobService) Enqueue(format ExportFormat) (*ExportJob, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Validation(map[string]string{"format": "must be csv or pdf"})
	}

	record := &ExportJob{
		ID:        uuid.NewString(),
		Format:    format,
		Status:    ExportJobPending,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: "menu-export", Payload: format}); err != nil {
		s.fail(record.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule export")
	}
	return s.snapshot(record.ID), nil
}

// Get returns the current state of an export job.
func (s *ExportJobService) Get(jobID string) (*ExportJob, error) {
	record := s.snapshot(jobID)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return record, nil
}

// Open validates a signed download token and returns the stored document.
func (s *ExportJobService) Open(token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		s.logger.Warn("export file missing", zap.String("job_id", jobID), zap.Error(err))
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, path.Base(relPath), nil
}

func (s *ExportJobService) handle(ctx context.Context, job jobs.Job) error {
	format, ok := job.Payload.(ExportFormat)
	if !ok {
		s.fail(job.ID, fmt.Errorf("unexpected payload %T", job.Payload))
		return nil
	}

	result, err := s.exports.Export(ctx, format)
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	relPath := path.Join(job.ID, result.Filename)
	if _, err := s.store.Save(relPath, result.Payload); err != nil {
		s.fail(job.ID, err)
		return nil
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if record, ok := s.records[job.ID]; ok {
		record.Status = ExportJobCompleted
		record.Filename = result.Filename
		record.DownloadURL = "/menus/export/download?token=" + token
		record.ExpiresAt = &expiresAt
		record.CompletedAt = &now
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportJobService) fail(jobID string, err error) {
	s.logger.Warn("export job failed", zap.String("job_id", jobID), zap.Error(err))
	now := time.Now().UTC()
	s.mu.Lock()
	if record, ok := s.records[jobID]; ok {
		record.Status = ExportJobFailed
		record.Error = err.Error()
		record.CompletedAt = &now
	}
	s.mu.Unlock()
}

func (s *ExportJobService) snapshot(jobID string) *ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[jobID]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}
