package audit

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/app/models"
)

// BatchArchiver uploads one batch of transaction log rows and returns
// the stored object key.
type BatchArchiver interface {
	ArchiveBatch(ctx context.Context, logs []models.TransactionLog) (string, error)
}

// LogSource reads recent transaction log rows, newest first.
type LogSource interface {
	GetByProvider(provider string, limit int) ([]models.TransactionLog, error)
}

// Exporter copies fresh transaction log rows to the archive on a fixed
// interval. Rows are tracked by ID so a tick never re-uploads what a
// previous one already exported. The cursor only advances after a
// successful upload, a failed batch is retried on the next tick.
type Exporter struct {
	archiver BatchArchiver
	source   LogSource
	provider string
	interval time.Duration
	batch    int

	mu     sync.Mutex
	lastID uint

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewExporter creates an export loop over the given archiver and log
// source. provider scopes which rows are read.
func NewExporter(archiver BatchArchiver, source LogSource, provider string, cfg *Config) *Exporter {
	return &Exporter{
		archiver: archiver,
		source:   source,
		provider: provider,
		interval: cfg.ExportInterval,
		batch:    cfg.BatchSize,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the periodic export goroutine.
func (e *Exporter) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.ExportOnce(context.Background())
			case <-e.stopCh:
				return
			}
		}
	}()
	log.Infof("[Audit] Export loop started (every %s)", e.interval)
}

// Stop halts the export loop, waiting for any in-flight upload.
func (e *Exporter) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

// ExportOnce archives every row written since the previous successful
// export.
func (e *Exporter) ExportOnce(ctx context.Context) {
	rows, err := e.source.GetByProvider(e.provider, e.batch)
	if err != nil {
		log.Errorf("[Audit] Failed to read transaction logs: %v", err)
		return
	}

	e.mu.Lock()
	lastID := e.lastID
	e.mu.Unlock()

	fresh := make([]models.TransactionLog, 0, len(rows))
	maxID := lastID
	for _, row := range rows {
		if row.ID <= lastID {
			continue
		}
		fresh = append(fresh, row)
		if row.ID > maxID {
			maxID = row.ID
		}
	}
	if len(fresh) == 0 {
		return
	}

	if _, err := e.archiver.ArchiveBatch(ctx, fresh); err != nil {
		log.Errorf("[Audit] Failed to archive batch: %v", err)
		return
	}

	e.mu.Lock()
	e.lastID = maxID
	e.mu.Unlock()
}
