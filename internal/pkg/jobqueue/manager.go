package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/internal/pkg/config"
)

// Manager owns both durable queues: payment operations retry 3 times
// from a 1s base, webhook deliveries 5 times from a 2s base.
type Manager struct {
	paymentQueue *Queue
	webhookQueue *Queue
	mu           sync.Mutex
	running      bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		cfg := config.Load()
		globalManager = NewManager(cfg.Queue)
	})
	return globalManager
}

// NewManager builds a manager with explicit worker counts. Used directly
// in tests; production code goes through GetManager.
func NewManager(cfg config.QueueConfig) *Manager {
	return &Manager{
		paymentQueue: NewQueue(PaymentQueueName, cfg.PaymentWorkers, Options{
			MaxRetries:  3,
			BackoffBase: 1000 * time.Millisecond,
		}),
		webhookQueue: NewQueue(WebhookQueueName, cfg.WebhookWorkers, Options{
			MaxRetries:  5,
			BackoffBase: 2000 * time.Millisecond,
		}),
	}
}

// PaymentQueue returns the payment operations queue.
func (m *Manager) PaymentQueue() *Queue {
	return m.paymentQueue
}

// WebhookQueue returns the webhook delivery queue.
func (m *Manager) WebhookQueue() *Queue {
	return m.webhookQueue
}

// Start starts both queues.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.running = true
	log.Info("[JobQueue Manager] Starting payment and webhook queues")
	m.paymentQueue.Start()
	m.webhookQueue.Start()
	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops both queues and waits for in-flight jobs.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping queues...")
	m.paymentQueue.Stop()
	m.webhookQueue.Stop()
	m.running = false
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// QueueStatus is a point-in-time snapshot of one queue.
type QueueStatus struct {
	Pending    int64               `json:"pending"`
	Processing int64               `json:"processing"`
	Stats      map[JobStatus]int64 `json:"stats"`
}

// Status reports both queues for the status endpoint.
func (m *Manager) Status(ctx context.Context) (map[string]QueueStatus, error) {
	out := make(map[string]QueueStatus, 2)
	for _, q := range []*Queue{m.paymentQueue, m.webhookQueue} {
		pending, err := q.GetQueueSize(ctx)
		if err != nil {
			return nil, err
		}
		processing, err := q.GetProcessingSize(ctx)
		if err != nil {
			return nil, err
		}
		stats, err := q.GetJobStats(ctx)
		if err != nil {
			return nil, err
		}
		out[q.Name()] = QueueStatus{Pending: pending, Processing: processing, Stats: stats}
	}
	return out, nil
}
