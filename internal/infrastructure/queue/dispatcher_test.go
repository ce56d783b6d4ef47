package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
)

type recordingRepo struct {
	mu   sync.Mutex
	recs []domain.SubmissionRecord
}

func (r *recordingRepo) Insert(_ context.Context, rec *domain.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, *rec)
	return nil
}

func (r *recordingRepo) ListByWizard(_ context.Context, id string) ([]domain.SubmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SubmissionRecord
	for _, rec := range r.recs {
		if rec.WizardID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestDispatcher_PreservesPerWizardOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	outcomes := []domain.SubmissionOutcome{domain.OutcomeBlocked, domain.OutcomeFailed, domain.OutcomeSubmitted}
	for _, o := range outcomes {
		d.Record(domain.SubmissionRecord{WizardID: "w1", Outcome: o})
		d.Record(domain.SubmissionRecord{WizardID: "w2", Outcome: o})
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, _ := repo.ListByWizard(ctx, "w1")
		other, _ := repo.ListByWizard(ctx, "w2")
		if len(recs) == 3 && len(other) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for audit writes")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	recs, _ := repo.ListByWizard(context.Background(), "w1")
	for i, o := range outcomes {
		if recs[i].Outcome != o {
			t.Fatalf("record %d outcome = %s, want %s", i, recs[i].Outcome, o)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
	if d.shardIndex("abc") != d.shardIndex("abc") {
		t.Fatalf("shard index must be deterministic")
	}
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	for i := 0; i < 5; i++ {
		d.Record(domain.SubmissionRecord{WizardID: "w"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if recs, _ := repo.ListByWizard(context.Background(), "w"); len(recs) != 5 {
		t.Fatalf("expected 5 drained records, got %d", len(recs))
	}
}
