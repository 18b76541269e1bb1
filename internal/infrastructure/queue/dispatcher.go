package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/autostack/access-service/internal/api/metrics"
	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256

	drainInsertTimeout = 5 * time.Second
)

// Dispatcher writes audit events asynchronously through a fixed set of
// workers. Events are sharded by username, so events for one principal are
// persisted in the order they were recorded.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	repo    ports.AuthEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuthEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// persists the events already queued to it and then returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues event on the worker responsible for its username. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Record(event domain.AuthEvent) {
	idx := d.shardIndex(event.Username)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("username", event.Username).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.persist(ctx, id, &event)
		}
	}
}

// drain persists whatever is still buffered once the dispatcher is stopped.
// Each insert gets its own deadline since ctx is already done.
func (d *Dispatcher) drain(id int, ch <-chan domain.AuthEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case event := <-ch:
			insertCtx, cancel := context.WithTimeout(context.Background(), drainInsertTimeout)
			d.persist(insertCtx, id, &event)
			cancel()
		default:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event *domain.AuthEvent) {
	if err := d.repo.InsertAuthEvent(ctx, event); err != nil {
		d.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Str("username", event.Username).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}
