package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("mail queue full")

const sendTimeout = 30 * time.Second

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				return
			}

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("worker sending mail", "worker_id", w.ID, "subject", msg.Subject)
				processFunc(msg)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	Workers   int
	QueueSize int
}

// Pool queues outbound mail and delivers it on a fixed set of workers.
// Delivery is at most once; failures are logged only.
type Pool struct {
	sender     Sender
	logger     *slog.Logger
	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewPool(sender Sender, cfg PoolConfig, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 100
	}

	p := &Pool{
		sender:     sender,
		logger:     logger,
		jobQueue:   make(chan Message, queue),
		workerPool: make(chan chan Message, workers),
		maxWorkers: workers,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			NewWorker(i, p.workerPool, p.logger).Start(p.ctx, &p.wg, p.deliver)
		}
		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("mail worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case msg := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- msg:
				case <-p.ctx.Done():
					return
				}
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("mail dispatcher shutting down", "dropped", len(p.jobQueue))
			return
		}
	}
}

// Enqueue never blocks; a full queue drops the message.
func (p *Pool) Enqueue(msg Message) error {
	select {
	case <-p.ctx.Done():
		return ErrQueueFull
	default:
	}
	select {
	case p.jobQueue <- msg:
		return nil
	default:
		p.logger.Warn("mail queue full, dropping message", "subject", msg.Subject, "queue_capacity", cap(p.jobQueue))
		return ErrQueueFull
	}
}

// Send delivers one message synchronously, bypassing the queue.
func (p *Pool) Send(ctx context.Context, msg Message) error {
	return p.sender.Send(ctx, msg)
}

func (p *Pool) Shutdown() {
	p.logger.Info("shutting down mail worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("mail worker pool shutdown complete")
}

func (p *Pool) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(p.ctx, sendTimeout)
	defer cancel()

	if err := p.sender.Send(ctx, msg); err != nil {
		p.logger.Error("failed to send mail", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	p.logger.Info("mail sent", "to", msg.To, "subject", msg.Subject)
}
