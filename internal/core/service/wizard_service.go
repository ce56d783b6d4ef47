package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/permission"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/core/wizard"
	"github.com/aimatch/portal/internal/pkg/metrics"
)

// WizardOptions tunes the wizard registry.
type WizardOptions struct {
	// IdleTTL abandons wizards untouched for longer than this.
	IdleTTL time.Duration
	// SweepInterval is how often idle wizards are collected.
	SweepInterval time.Duration
	// SubmitTimeout bounds the marketplace call of a submit. The call is not
	// cancelled when the requesting client goes away.
	SubmitTimeout time.Duration
	// LockTTL is how long a cross-replica submit lock may be held.
	LockTTL time.Duration
}

func (o WizardOptions) withDefaults() WizardOptions {
	if o.IdleTTL <= 0 {
		o.IdleTTL = 2 * time.Hour
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 30 * time.Second
	}
	if o.LockTTL <= 0 {
		o.LockTTL = o.SubmitTimeout + 5*time.Second
	}
	return o
}

type wizardEntry struct {
	inst         wizard.Instance
	sessionID    string
	userID       int64
	enterpriseID domain.EnterpriseID
}

// WizardService keeps the running wizards of all sessions. A wizard is only
// visible to the session that started it.
type WizardService struct {
	api     ports.MarketplaceAPI
	locker  ports.SubmitLocker
	auditor ports.SubmissionAuditor
	cfg     wizard.Config
	opts    WizardOptions
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*wizardEntry
}

func NewWizardService(
	api ports.MarketplaceAPI,
	locker ports.SubmitLocker,
	auditor ports.SubmissionAuditor,
	cfg wizard.Config,
	opts WizardOptions,
	logger zerolog.Logger,
) *WizardService {
	if cfg.Validator == nil {
		cfg.Validator = wizard.NewValidator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &WizardService{
		api:     api,
		locker:  locker,
		auditor: auditor,
		cfg:     cfg,
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     now,
		entries: make(map[string]*wizardEntry),
	}
}

// Start opens the wizard the session's role fills in, or resumes the one the
// session already has open.
func (s *WizardService) Start(ctx context.Context, sess domain.Session) (wizard.Snapshot, error) {
	kind := permission.Resolve(sess).WizardKind()
	if kind == domain.WizardNone {
		return wizard.Snapshot{}, domain.ErrNoWizardForRole
	}

	if e := s.openFor(sess.ID, kind); e != nil {
		return e.inst.Snapshot(), nil
	}

	id := uuid.NewString()
	var inst wizard.Instance
	switch kind {
	case domain.WizardDemandQualification:
		w, err := s.newDemand(ctx, id, sess)
		if err != nil {
			return wizard.Snapshot{}, err
		}
		inst = w
	case domain.WizardSupplyRegistration:
		inst = s.newSupply(id, sess)
	}

	// A concurrent Start of the same session may have won while this one
	// was building.
	s.mu.Lock()
	if e := s.openForLocked(sess.ID, kind); e != nil {
		s.mu.Unlock()
		inst.Abandon()
		return e.inst.Snapshot(), nil
	}
	s.entries[id] = &wizardEntry{inst: inst, sessionID: sess.ID, userID: sess.UserID, enterpriseID: sess.EnterpriseID}
	s.mu.Unlock()
	metrics.WizardsActive.WithLabelValues(string(kind)).Inc()

	s.logger.Info().
		Str("wizard_id", id).
		Str("kind", string(kind)).
		Str("session_id", sess.ID).
		Msg("wizard started")
	return inst.Snapshot(), nil
}

func (s *WizardService) newDemand(ctx context.Context, id string, sess domain.Session) (*wizard.Wizard[domain.DemandDraft], error) {
	if !sess.EnterpriseID.Valid() {
		return nil, domain.ErrNoEnterprise
	}
	ent, err := s.api.GetEnterprise(ctx, sess.Token, sess.EnterpriseID)
	if err != nil {
		return nil, err
	}
	if ent.IsQualified() {
		return nil, domain.ErrAlreadyVerified
	}

	seed := wizard.Seed[domain.DemandDraft](ent.Raw)

	token, enterpriseID := sess.Token, sess.EnterpriseID
	submit := func(ctx context.Context, d domain.DemandDraft) error {
		return s.api.SubmitQualification(ctx, token, enterpriseID, ports.QualificationSubmission{
			DemandDraft:              d,
			QualificationStatus:      domain.QualificationPending,
			QualificationSubmittedAt: s.now().UTC(),
		})
	}
	return wizard.NewDemand(id, s.cfg, seed, submit), nil
}

func (s *WizardService) newSupply(id string, sess domain.Session) *wizard.Wizard[domain.SupplyDraft] {
	var seed domain.SupplyDraft
	seed.ContactPerson = strings.TrimSpace(sess.FullName)
	seed.ContactEmail = sess.Email

	token := sess.Token
	submit := func(ctx context.Context, d domain.SupplyDraft) error {
		_, err := s.api.RegisterSupplier(ctx, token, ports.SupplierRegistration{
			SupplyDraft:    d,
			EnterpriseType: domain.EnterpriseSupply,
			Status:         domain.EnterprisePending,
		})
		return err
	}
	return wizard.NewSupply(id, s.cfg, seed, submit)
}

func (s *WizardService) openFor(sessionID string, kind domain.WizardKind) *wizardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openForLocked(sessionID, kind)
}

func (s *WizardService) openForLocked(sessionID string, kind domain.WizardKind) *wizardEntry {
	for _, e := range s.entries {
		if e.sessionID != sessionID || e.inst.Kind() != kind {
			continue
		}
		if st := e.inst.Snapshot().Status; st == wizard.StatusEditing || st == wizard.StatusSubmitting {
			return e
		}
	}
	return nil
}

func (s *WizardService) lookup(sess domain.Session, id string) (*wizardEntry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || e.sessionID != sess.ID {
		return nil, fmt.Errorf("wizard %s: %w", id, domain.ErrWizardNotFound)
	}
	return e, nil
}

func (s *WizardService) Get(sess domain.Session, id string) (wizard.Snapshot, error) {
	e, err := s.lookup(sess, id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return e.inst.Snapshot(), nil
}

func (s *WizardService) Edit(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error) {
	return s.transition(sess, id, "edit", func(w wizard.Instance) (wizard.Snapshot, error) { return w.Edit(values) })
}

func (s *WizardService) Next(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error) {
	return s.transition(sess, id, "next", func(w wizard.Instance) (wizard.Snapshot, error) { return w.Next(values) })
}

func (s *WizardService) Previous(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error) {
	return s.transition(sess, id, "previous", func(w wizard.Instance) (wizard.Snapshot, error) { return w.Previous(values) })
}

func (s *WizardService) AddEntry(sess domain.Session, id, group string, entry json.RawMessage) (wizard.Snapshot, error) {
	return s.transition(sess, id, "add_entry", func(w wizard.Instance) (wizard.Snapshot, error) { return w.AddEntry(group, entry) })
}

func (s *WizardService) RemoveEntry(sess domain.Session, id, group string, index int) (wizard.Snapshot, error) {
	return s.transition(sess, id, "remove_entry", func(w wizard.Instance) (wizard.Snapshot, error) { return w.RemoveEntry(group, index) })
}

func (s *WizardService) Preview(sess domain.Session, id string, values wizard.Values) (wizard.Preview, error) {
	e, err := s.lookup(sess, id)
	if err != nil {
		return wizard.Preview{}, err
	}
	p, err := e.inst.Preview(values)
	metrics.WizardTransitionsTotal.WithLabelValues(string(e.inst.Kind()), "preview", transitionResult(err)).Inc()
	return p, err
}

func (s *WizardService) transition(sess domain.Session, id, op string, fn func(wizard.Instance) (wizard.Snapshot, error)) (wizard.Snapshot, error) {
	e, err := s.lookup(sess, id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	snap, err := fn(e.inst)
	metrics.WizardTransitionsTotal.WithLabelValues(string(e.inst.Kind()), op, transitionResult(err)).Inc()
	if err != nil {
		s.logger.Debug().Err(err).Str("wizard_id", id).Str("op", op).Msg("wizard transition rejected")
	}
	return snap, err
}

// Submit sends the wizard's draft to the marketplace. Every attempt is
// audited, including those stopped by the completeness gate.
func (s *WizardService) Submit(ctx context.Context, sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error) {
	e, err := s.lookup(sess, id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	kind := e.inst.Kind()

	lockKey := submitLockKey(e)
	acquired, err := s.locker.Acquire(ctx, lockKey, s.opts.LockTTL)
	if err != nil {
		return e.inst.Snapshot(), fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		metrics.SubmissionsTotal.WithLabelValues(string(kind), string(domain.OutcomeBlocked)).Inc()
		return e.inst.Snapshot(), domain.ErrSubmissionInFlight
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.SubmitTimeout)
	defer cancel()
	defer func() {
		if rerr := s.locker.Release(context.WithoutCancel(ctx), lockKey); rerr != nil {
			s.logger.Warn().Err(rerr).Str("wizard_id", id).Msg("submit lock release failed")
		}
	}()

	snap, err := e.inst.Submit(sendCtx, values)
	outcome := submitOutcome(err)

	metrics.SubmissionsTotal.WithLabelValues(string(kind), string(outcome)).Inc()
	metrics.SubmissionCompleteness.WithLabelValues(string(kind)).Observe(float64(snap.Completeness))

	rec := domain.SubmissionRecord{
		WizardID:     id,
		Kind:         kind,
		SessionID:    e.sessionID,
		UserID:       e.userID,
		EnterpriseID: e.enterpriseID,
		Completeness: snap.Completeness,
		Outcome:      outcome,
		At:           s.now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	s.auditor.Record(rec)

	log := s.logger.Info()
	if outcome == domain.OutcomeFailed {
		log = s.logger.Error().Err(err)
	}
	log.Str("wizard_id", id).
		Str("kind", string(kind)).
		Str("outcome", string(outcome)).
		Int("completeness", snap.Completeness).
		Msg("wizard submit")

	return snap, err
}

// Abandon discards a wizard of the session.
func (s *WizardService) Abandon(sess domain.Session, id string) error {
	e, err := s.lookup(sess, id)
	if err != nil {
		return err
	}
	s.remove(id, e)
	return nil
}

// OnSessionEnded abandons every wizard of the ended session. It is meant to
// be passed to SessionService.Subscribe.
func (s *WizardService) OnSessionEnded(ev SessionEnded) {
	s.mu.RLock()
	var ids []string
	for id, e := range s.entries {
		if e.sessionID == ev.SessionID {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.RLock()
		e := s.entries[id]
		s.mu.RUnlock()
		if e != nil {
			s.remove(id, e)
		}
	}
	if len(ids) > 0 {
		s.logger.Info().Str("session_id", ev.SessionID).Int("wizards", len(ids)).Msg("session wizards abandoned")
	}
}

// Run collects idle wizards until ctx is cancelled.
func (s *WizardService) Run(ctx context.Context) {
	t := time.NewTicker(s.opts.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Sweep abandons wizards idle for longer than IdleTTL. Wizards with a submit
// in flight are left alone.
func (s *WizardService) Sweep() int {
	cutoff := s.now().Add(-s.opts.IdleTTL)

	s.mu.RLock()
	var stale []string
	for id, e := range s.entries {
		if e.inst.LastTouched().Before(cutoff) && e.inst.Snapshot().Status != wizard.StatusSubmitting {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.mu.RLock()
		e := s.entries[id]
		s.mu.RUnlock()
		if e != nil {
			s.remove(id, e)
		}
	}
	if len(stale) > 0 {
		s.logger.Debug().Int("wizards", len(stale)).Msg("idle wizards swept")
	}
	return len(stale)
}

func (s *WizardService) remove(id string, e *wizardEntry) {
	e.inst.Abandon()

	s.mu.Lock()
	_, present := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if present {
		metrics.WizardsActive.WithLabelValues(string(e.inst.Kind())).Dec()
	}
}

// submitLockKey scopes the submit lock to what the submission writes
// remotely: one enterprise's qualification, or one user's registration. Two
// sessions on different replicas therefore cannot submit it concurrently.
func submitLockKey(e *wizardEntry) string {
	if e.inst.Kind() == domain.WizardDemandQualification {
		return "submit:enterprise:" + strconv.FormatInt(int64(e.enterpriseID), 10)
	}
	return "submit:user:" + strconv.FormatInt(e.userID, 10)
}

func transitionResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	default:
		return "rejected"
	}
}

func submitOutcome(err error) domain.SubmissionOutcome {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return domain.OutcomeSubmitted
	case errors.Is(err, domain.ErrCompletenessBelowThreshold),
		errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrIllegalTransition):
		return domain.OutcomeBlocked
	case errors.As(err, &ve):
		return domain.OutcomeInvalid
	case errors.Is(err, domain.ErrWizardClosed):
		return domain.OutcomeStale
	default:
		return domain.OutcomeFailed
	}
}
