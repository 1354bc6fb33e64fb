package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quitanza/paycore/internal/pkg/cache"
)

const (
	// Redis key prefixes
	JobKeyPrefix = "job:"

	// Queue names
	PaymentQueueName = "payment-processing"
	WebhookQueueName = "webhook-processing"

	// Job settings
	JobTTL = 24 * time.Hour // Jobs expire after 24 hours

	// History lists are capped so Redis never grows unbounded
	CompletedHistoryLimit = 1000
	FailedHistoryLimit    = 5000
)

// Handler processes one job. A returned error marks the attempt failed;
// transient failures are retried with backoff up to the queue's limit.
type Handler func(ctx context.Context, job *Job) error

// ErrPermanent wraps failures that would fail identically on replay.
// Jobs failing with it are parked immediately instead of retried.
var ErrPermanent = errors.New("permanent job failure")

// Options control retry behavior per queue.
type Options struct {
	MaxRetries  int
	BackoffBase time.Duration
}

// Queue manages one named durable job queue backed by Redis.
type Queue struct {
	name       string
	client     *redis.Client
	opts       Options
	handlers   map[JobType]Handler
	workers    int
	workerPool chan struct{}
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a named job queue.
func NewQueue(name string, workers int, opts Options) *Queue {
	if workers <= 0 {
		workers = 3 // Default number of workers
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}

	return &Queue{
		name:       name,
		client:     cache.GetClient(),
		opts:       opts,
		handlers:   make(map[JobType]Handler),
		workers:    workers,
		workerPool: make(chan struct{}, workers),
		stopCh:     make(chan struct{}),
	}
}

// RegisterHandler binds a handler to a job type. Must be called before
// Start.
func (q *Queue) RegisterHandler(jobType JobType, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

func (q *Queue) pendingKey() string    { return "job_queue:" + q.name }
func (q *Queue) processingKey() string { return "job_processing:" + q.name }
func (q *Queue) statsKey() string      { return "job_stats:" + q.name }
func (q *Queue) completedKey() string  { return "job_completed:" + q.name }
func (q *Queue) failedKey() string     { return "job_failed:" + q.name }

// Start starts the job queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	log.Infof("[JobQueue:%s] Starting %d workers", q.name, q.workers)

	// Initialize worker pool
	for i := 0; i < q.workers; i++ {
		q.workerPool <- struct{}{}
	}

	// Start workers
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	// Start stuck-processing sweeper (recovers jobs stuck in processing due to crashes)
	q.wg.Add(1)
	go q.stuckSweeper(10*time.Minute, 1*time.Minute)
}

// Stop stops the job queue workers
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Infof("[JobQueue:%s] Stopping workers...", q.name)
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Infof("[JobQueue:%s] All workers stopped", q.name)
}

// stuckSweeper periodically scans the processing list and requeues jobs stuck for longer than maxAge
func (q *Queue) stuckSweeper(maxAge time.Duration, interval time.Duration) {
	defer q.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			ids, err := q.client.LRange(ctx, q.processingKey(), 0, -1).Result()
			if err != nil {
				log.Errorf("[JobQueue:%s] Sweeper LRange error: %v", q.name, err)
				continue
			}
			now := time.Now()
			for _, id := range ids {
				jobKey := JobKeyPrefix + id
				data, err := q.client.Get(ctx, jobKey).Result()
				if err != nil {
					// Job data missing; remove from processing list
					if err != redis.Nil {
						log.Errorf("[JobQueue:%s] Sweeper Get error for %s: %v", q.name, id, err)
					}
					_ = q.client.LRem(ctx, q.processingKey(), 1, id).Err()
					continue
				}
				var job Job
				if uerr := json.Unmarshal([]byte(data), &job); uerr != nil {
					log.Errorf("[JobQueue:%s] Sweeper unmarshal error for %s: %v", q.name, id, uerr)
					_ = q.client.LRem(ctx, q.processingKey(), 1, id).Err()
					continue
				}
				if job.Status != JobStatusProcessing {
					// Clean up stray entry
					_ = q.client.LRem(ctx, q.processingKey(), 1, id).Err()
					continue
				}
				started := job.ProcessedAt
				if started == nil || started.IsZero() {
					tmp := job.UpdatedAt
					if tmp.IsZero() {
						tmp = job.CreatedAt
					}
					started = &tmp
				}
				if now.Sub(*started) > maxAge {
					log.Warnf("[JobQueue:%s] Recovering stuck job %s (type=%s), age=%s", q.name, job.ID, job.Type, now.Sub(*started))
					job.Status = JobStatusPending
					job.ErrorMsg = "recovered by sweeper"
					job.UpdatedAt = now
					q.updateJob(ctx, &job)
					// Move from processing back to pending
					_ = q.client.LRem(ctx, q.processingKey(), 1, id).Err()
					_ = q.client.RPush(ctx, q.pendingKey(), id).Err()
				}
			}
		}
	}
}

// worker processes jobs from the queue
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[JobQueue:%s] Worker %d started", q.name, id)

	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Infof("[JobQueue:%s] Worker %d stopping", q.name, id)
			return
		default:
			// Acquire worker slot
			<-q.workerPool

			// Try to get a job from the queue
			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[JobQueue:%s] Worker %d: Error dequeuing job: %v", q.name, id, err)
				}
				// Release worker slot and wait before retry
				q.workerPool <- struct{}{}
				time.Sleep(time.Second)
				continue
			}

			if job != nil {
				log.Infof("[JobQueue:%s] Worker %d processing job %s (Type: %s)", q.name, id, job.ID, job.Type)
				q.processJob(ctx, job)
			}

			// Release worker slot
			q.workerPool <- struct{}{}
		}
	}
}

// EnqueueJob adds a new job to the queue
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	ctx := context.Background()

	job := &Job{
		ID:         uuid.New().String(),
		Queue:      q.name,
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: q.opts.MaxRetries,
	}

	// Store job data
	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	jobKey := JobKeyPrefix + job.ID

	// Use a pipeline for atomic operations
	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKey, jobData, JobTTL)
	pipe.LPush(ctx, q.pendingKey(), job.ID)
	pipe.HIncrBy(ctx, q.statsKey(), string(JobStatusPending), 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue:%s] Enqueued job %s (Type: %s)", q.name, job.ID, job.Type)
	return job, nil
}

// dequeueJob gets the next job from the queue
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	// Move job from pending queue to processing queue atomically
	result, err := q.client.BRPopLPush(ctx, q.pendingKey(), q.processingKey(), time.Second).Result()
	if err != nil {
		return nil, err
	}

	jobID := result
	jobKey := JobKeyPrefix + jobID

	// Get job data
	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		// Job data not found, remove from processing queue
		q.client.LRem(ctx, q.processingKey(), 1, jobID)
		return nil, fmt.Errorf("job data not found for ID %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		// Invalid job data, remove from processing queue
		q.client.LRem(ctx, q.processingKey(), 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}

	return &job, nil
}

// processJob processes a single job
func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	q.mu.Lock()
	handler, ok := q.handlers[job.Type]
	q.mu.Unlock()

	var err error
	if !ok {
		err = fmt.Errorf("no handler registered for job type: %s", job.Type)
	} else {
		err = handler(ctx, job)
	}

	if err != nil {
		log.Errorf("[JobQueue:%s] Job %s failed: %v", q.name, job.ID, err)
		job.MarkAsFailed(err.Error())

		// Check if job can be retried
		if job.IsRetryable() && !errors.Is(err, ErrPermanent) {
			delay := q.RetryDelay(job.RetryCount)
			log.Infof("[JobQueue:%s] Retrying job %s in %s (Attempt %d/%d)", q.name, job.ID, delay, job.RetryCount, job.MaxRetries)
			job.MarkAsRetrying()
			q.updateJob(ctx, job)

			// Re-enqueue for retry after the backoff delay
			time.AfterFunc(delay, func() {
				q.client.LPush(ctx, q.pendingKey(), job.ID)
			})
		} else {
			log.Errorf("[JobQueue:%s] Job %s permanently failed after %d retries", q.name, job.ID, job.RetryCount)
			q.updateJobStats(ctx, JobStatusFailed, 1)
			q.parkFailedJob(ctx, job.ID)
		}
	} else {
		log.Infof("[JobQueue:%s] Job %s completed successfully", q.name, job.ID)
		job.MarkAsCompleted()
		q.updateJobStats(ctx, JobStatusCompleted, 1)
		q.recordCompletedJob(ctx, job.ID)
	}

	if job.Status != JobStatusCompleted {
		q.updateJob(ctx, job)
	}
	q.removeFromProcessing(ctx, job.ID)
}

// RetryDelay returns the exponential backoff delay for the given attempt
// number (1-based): base * 2^(attempt-1).
func (q *Queue) RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return q.opts.BackoffBase * time.Duration(1<<(attempt-1))
}

// updateJob updates job data in Redis
func (q *Queue) updateJob(ctx context.Context, job *Job) {
	jobData, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue:%s] Failed to marshal job %s: %v", q.name, job.ID, err)
		return
	}

	jobKey := JobKeyPrefix + job.ID
	if err := q.client.Set(ctx, jobKey, jobData, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue:%s] Failed to update job %s: %v", q.name, job.ID, err)
	}
}

// removeFromProcessing removes a job from the processing queue
func (q *Queue) removeFromProcessing(ctx context.Context, jobID string) {
	if err := q.client.LRem(ctx, q.processingKey(), 1, jobID).Err(); err != nil {
		log.Errorf("[JobQueue:%s] Failed to remove job %s from processing queue: %v", q.name, jobID, err)
	}
}

// recordCompletedJob moves a completed job into the capped history list
// and drops its data key.
func (q *Queue) recordCompletedJob(ctx context.Context, jobID string) {
	pipe := q.client.Pipeline()
	pipe.LPush(ctx, q.completedKey(), jobID)
	pipe.LTrim(ctx, q.completedKey(), 0, CompletedHistoryLimit-1)
	pipe.Del(ctx, JobKeyPrefix+jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Errorf("[JobQueue:%s] Failed to record completed job %s: %v", q.name, jobID, err)
	}
}

// parkFailedJob keeps exhausted jobs inspectable on a capped list. The
// job data key stays until its TTL expires.
func (q *Queue) parkFailedJob(ctx context.Context, jobID string) {
	pipe := q.client.Pipeline()
	pipe.LPush(ctx, q.failedKey(), jobID)
	pipe.LTrim(ctx, q.failedKey(), 0, FailedHistoryLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Errorf("[JobQueue:%s] Failed to park failed job %s: %v", q.name, jobID, err)
	}
}

// updateJobStats updates job statistics
func (q *Queue) updateJobStats(ctx context.Context, status JobStatus, delta int64) {
	if err := q.client.HIncrBy(ctx, q.statsKey(), string(status), delta).Err(); err != nil {
		log.Errorf("[JobQueue:%s] Failed to update job stats: %v", q.name, err)
	}
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	jobKey := JobKeyPrefix + jobID
	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// GetJobStats returns statistics about job statuses
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	stats, err := q.client.HGetAll(ctx, q.statsKey()).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[JobStatus]int64)
	for status, count := range stats {
		if countInt, err := json.Number(count).Int64(); err == nil {
			result[JobStatus(status)] = countInt
		}
	}

	return result, nil
}

// GetQueueSize returns the number of pending jobs
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.pendingKey()).Result()
}

// GetProcessingSize returns the number of jobs being processed
func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.processingKey()).Result()
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}
