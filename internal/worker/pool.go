package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"todo-service/internal/utils"
)

var (
	ErrPoolClosed      = errors.New("пул воркеров остановлен")
	ErrShutdownTimeout = errors.New("превышен таймаут остановки пула")
)

// Job представляет задачу для выполнения
type Job struct {
	ID   string
	Task func() error
	done chan error
}

// WorkerPool ограничивает число одновременно выполняемых задач.
// Используется для bcrypt: хеширование дорогое, и без лимита
// пачка одновременных регистраций занимает все ядра.
type WorkerPool struct {
	workers  int
	jobQueue chan Job
	quit     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	stats    PoolStats
}

// PoolStats содержит статистику работы пула
type PoolStats struct {
	TotalJobs     int64
	CompletedJobs int64
	FailedJobs    int64
	Workers       int
	QueuedJobs    int
}

func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	pool := &WorkerPool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
		stats:    PoolStats{Workers: workers},
	}

	utils.LogSuccess("WorkerPool", "Создан пул воркеров: воркеров %d, очередь %d", workers, queueSize)
	return pool
}

// Start запускает воркеры
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	utils.LogSuccess("WorkerPool", "Все воркеры запущены")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			utils.LogDebug("WorkerPool", "Воркер #%d завершает работу", id)
			return
		case job := <-p.jobQueue:
			p.execute(id, job)
		}
	}
}

func (p *WorkerPool) execute(workerID int, job Job) {
	startTime := time.Now()
	err := job.Task()

	p.mu.Lock()
	if err != nil {
		p.stats.FailedJobs++
	} else {
		p.stats.CompletedJobs++
	}
	p.mu.Unlock()

	utils.LogDebug("WorkerPool", "Воркер #%d: задача %s выполнена за %v", workerID, job.ID, time.Since(startTime))
	job.done <- err
}

// Run ставит задачу в очередь и ждёт её результата.
// Если ctx отменён или пул остановлен раньше, ожидание прекращается, а уже
// начатая задача всё равно доработает в воркере - поэтому Task не должна
// ссылаться на данные запроса.
func (p *WorkerPool) Run(ctx context.Context, id string, task func() error) error {
	job := Job{ID: id, Task: task, done: make(chan error, 1)}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.stats.TotalJobs++
	p.mu.Unlock()

	select {
	case p.jobQueue <- job:
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-job.done:
		return err
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown останавливает пул, дожидаясь текущих задач не дольше timeout
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.LogSuccess("WorkerPool", "Все воркеры завершили работу")
		return nil
	case <-time.After(timeout):
		utils.LogWarning("WorkerPool", "Превышен таймаут остановки (%v)", timeout)
		return fmt.Errorf("%w: %v", ErrShutdownTimeout, timeout)
	}
}

// GetStats возвращает текущую статистику пула
func (p *WorkerPool) GetStats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := p.stats
	stats.QueuedJobs = len(p.jobQueue)
	return stats
}
