package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/internal/pkg/database"
	"github.com/lexforge/lexforge/internal/pkg/env"
	metrics "github.com/lexforge/lexforge/internal/pkg/metrics/counter"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	counterFlushTicker *time.Ticker
	archiveRetryTicker *time.Ticker
	flushCounters      func() error
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(NewQueue(nil, env.GetEnvInt("JOB_WORKERS", 3)))
	})
	return globalManager
}

// NewManager wraps queue with the periodic background tasks.
func NewManager(queue *Queue) *Manager {
	return &Manager{
		queue:         queue,
		flushCounters: metrics.FlushAll,
		stopCh:        make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.counterFlushTicker = time.NewTicker(time.Duration(env.GetEnvInt("COUNTER_FLUSH_SECONDS", 5)) * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker(m.stopCh)

	if m.queue.Handles(JobTypeDocumentArchive) {
		m.archiveRetryTicker = time.NewTicker(10 * time.Minute)
		m.wg.Add(1)
		go m.archiveRetryWorker(m.stopCh)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks. Pending counters are
// flushed one last time.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.archiveRetryTicker != nil {
		m.archiveRetryTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	m.queue.Stop()

	if err := m.flushCountersOnce(); err != nil {
		log.Errorf("[JobQueue Manager] Final counter flush error: %v", err)
	}
	log.Info("[JobQueue Manager] Stopped successfully")
}

// counterFlushWorker periodically flushes template counters from Redis to DB
func (m *Manager) counterFlushWorker(stopCh chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := m.flushCountersOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// archiveRetryWorker re-enqueues documents whose archive upload never
// succeeded.
func (m *Manager) archiveRetryWorker(stopCh chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Archive retry worker stopping")
			return
		case <-m.archiveRetryTicker.C:
			db := database.GetDB()
			if db == nil {
				continue
			}
			n, err := m.queue.EnqueueMissingArchives(context.Background(), db, time.Now().Add(-time.Hour), 100)
			if err != nil {
				log.Errorf("[JobQueue Manager] Archive retry error: %v", err)
			} else if n > 0 {
				log.Infof("[JobQueue Manager] Enqueued %d archive retries", n)
			}
		}
	}
}

func (m *Manager) flushCountersOnce() error {
	if m.flushCounters == nil {
		return nil
	}
	return m.flushCounters()
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
