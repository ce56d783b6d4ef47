package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

type stubAPI struct {
	mu sync.Mutex

	loginErr    error
	loginResult *ports.LoginResult

	enterprise      *domain.Enterprise
	enterpriseErr   error
	enterpriseDelay time.Duration
	gate            *domain.DemandGate

	submitErr      error
	qualifications []ports.QualificationSubmission
	registrations  []ports.SupplierRegistration
	verifications  []bool
	calls          int
}

func (a *stubAPI) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.loginResult, nil
}

func (a *stubAPI) GetEnterprise(_ context.Context, _ string, id domain.EnterpriseID) (*domain.Enterprise, error) {
	if a.enterpriseDelay > 0 {
		time.Sleep(a.enterpriseDelay)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.enterpriseErr != nil {
		return nil, a.enterpriseErr
	}
	if a.enterprise == nil {
		return &domain.Enterprise{ID: id}, nil
	}
	e := *a.enterprise
	return &e, nil
}

func (a *stubAPI) CanCreateDemand(context.Context, string, domain.EnterpriseID) (*domain.DemandGate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.gate, nil
}

func (a *stubAPI) SubmitQualification(_ context.Context, _ string, _ domain.EnterpriseID, sub ports.QualificationSubmission) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.submitErr != nil {
		return a.submitErr
	}
	a.qualifications = append(a.qualifications, sub)
	return nil
}

func (a *stubAPI) RegisterSupplier(_ context.Context, _ string, reg ports.SupplierRegistration) (*domain.Enterprise, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.submitErr != nil {
		return nil, a.submitErr
	}
	a.registrations = append(a.registrations, reg)
	return &domain.Enterprise{ID: 77, EnterpriseType: domain.EnterpriseSupply}, nil
}

func (a *stubAPI) VerifyEnterprise(_ context.Context, _ string, _ domain.EnterpriseID, approve bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.verifications = append(a.verifications, approve)
	return nil
}

func (a *stubAPI) Ping(context.Context) error { return nil }

func (a *stubAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type stubStore struct {
	mu   sync.Mutex
	recs map[string]ports.SessionRecord
}

func newStubStore() *stubStore {
	return &stubStore{recs: make(map[string]ports.SessionRecord)}
}

func (s *stubStore) Save(_ context.Context, id string, rec ports.SessionRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[id] = rec
	return nil
}

func (s *stubStore) Load(_ context.Context, id string) (*ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *stubStore) Touch(context.Context, string, time.Duration) error { return nil }

func (s *stubStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

type stubLocker struct {
	mu    sync.Mutex
	held  map[string]bool
	force bool // when true, Acquire always fails
}

func newStubLocker() *stubLocker { return &stubLocker{held: make(map[string]bool)} }

func (l *stubLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.force || l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *stubLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type stubAuditor struct {
	mu   sync.Mutex
	recs []domain.SubmissionRecord
}

func (a *stubAuditor) Record(rec domain.SubmissionRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, rec)
}

func (a *stubAuditor) records() []domain.SubmissionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.SubmissionRecord(nil), a.recs...)
}

func userJSON(role string, enterpriseID int64) json.RawMessage {
	u := domain.User{ID: 5, Email: "li@example.com", FullName: "Li Wei", Role: role}
	if enterpriseID > 0 {
		u.EnterpriseID = &enterpriseID
	}
	b, _ := json.Marshal(u)
	return b
}
