package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes submission audit records asynchronously. Records are
// sharded by wizard id so the attempts of one wizard are stored in order.
type Dispatcher struct {
	workers []chan domain.SubmissionRecord
	repo    ports.SubmissionRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.SubmissionAuditor = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.SubmissionRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SubmissionRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SubmissionRecord, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Record enqueues rec without blocking. When the worker's queue is full the
// record is dropped and logged.
func (d *Dispatcher) Record(rec domain.SubmissionRecord) {
	idx := d.shardIndex(rec.WizardID)
	select {
	case d.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("wizard_id", rec.WizardID).
			Str("outcome", string(rec.Outcome)).
			Int("worker_id", idx).
			Msg("audit queue full, record dropped")
	}
}

// shardIndex maps a wizard id deterministically to a worker index.
func (d *Dispatcher) shardIndex(wizardID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(wizardID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SubmissionRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case rec := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, rec)
		}
	}
}

// drain stores whatever is still queued at shutdown.
func (d *Dispatcher) drain(id int, ch <-chan domain.SubmissionRecord) {
	ctx := context.Background()
	for {
		select {
		case rec := <-ch:
			d.write(ctx, id, rec)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, rec domain.SubmissionRecord) {
	if err := d.repo.Insert(context.WithoutCancel(ctx), &rec); err != nil {
		d.log.Error().Err(err).
			Str("wizard_id", rec.WizardID).
			Int("worker_id", id).
			Msg("audit write failed")
	}
}
