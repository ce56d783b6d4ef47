// Package wizard implements the stepped qualification and registration forms:
// step navigation, per-step validation, completeness scoring and gated submit.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aimatch/portal/internal/core/domain"
)

// Status is the lifecycle state of a wizard.
type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
	StatusAbandoned  Status = "abandoned"
)

// Instance is the variant-independent view of a running wizard. All methods
// are safe for concurrent use; transitions on one instance are serialised.
type Instance interface {
	ID() string
	Kind() domain.WizardKind
	Snapshot() Snapshot
	Edit(values Values) (Snapshot, error)
	Next(values Values) (Snapshot, error)
	Previous(values Values) (Snapshot, error)
	Preview(values Values) (Preview, error)
	Submit(ctx context.Context, values Values) (Snapshot, error)
	AddEntry(group string, entry json.RawMessage) (Snapshot, error)
	RemoveEntry(group string, index int) (Snapshot, error)
	Abandon()
	LastTouched() time.Time
}

// SubmitFunc delivers a validated draft to the marketplace.
type SubmitFunc[D any] func(ctx context.Context, draft D) error

// StepInfo describes one step of a variant.
type StepInfo struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Snapshot is a read-only copy of a wizard's state.
type Snapshot struct {
	ID           string            `json:"id"`
	Kind         domain.WizardKind `json:"kind"`
	Status       Status            `json:"status"`
	Step         int               `json:"step"`
	StepKey      string            `json:"step_key"`
	Steps        []StepInfo        `json:"steps"`
	Draft        any               `json:"draft"`
	Completeness int               `json:"completeness"`
	Band         Band              `json:"band"`
	Threshold    int               `json:"threshold"`
	CanSubmit    bool              `json:"can_submit"`
	Errors       map[string]string `json:"errors,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
}

// Preview is the composed read-only view shown before submitting.
type Preview struct {
	Kind         domain.WizardKind `json:"kind"`
	Sections     []PreviewSection  `json:"sections"`
	Completeness int               `json:"completeness"`
	Band         Band              `json:"band"`
}

type PreviewSection struct {
	Key    string         `json:"key"`
	Title  string         `json:"title"`
	Fields []PreviewField `json:"fields"`
}

type PreviewField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type step[D any] struct {
	key     string
	title   string
	section func(*D) any
	groups  []string
}

type variant[D any] struct {
	kind    domain.WizardKind
	steps   []step[D]
	score   func(Scoring, D) int
	preview func(D) []PreviewSection
}

// Wizard is one running stepped form. draft only changes on transitions;
// working holds field values edited since the last transition.
type Wizard[D any] struct {
	mu sync.Mutex

	id       string
	v        variant[D]
	scoring  Scoring
	validate *validator.Validate
	submit   SubmitFunc[D]
	now      func() time.Time

	step       int
	draft      D
	working    Values
	status     Status
	errs       map[string]string
	lastErr    string
	generation uint64
	touched    time.Time
}

func newWizard[D any](id string, v variant[D], cfg Config, seed D, submit SubmitFunc[D]) *Wizard[D] {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	validate := cfg.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &Wizard[D]{
		id:       id,
		v:        v,
		scoring:  cfg.Scoring,
		validate: validate,
		submit:   submit,
		now:      now,
		draft:    seed,
		status:   StatusEditing,
		touched:  now(),
	}
}

// Config carries the shared collaborators of every wizard.
type Config struct {
	Scoring   Scoring
	Validator *validator.Validate
	Now       func() time.Time
}

func (w *Wizard[D]) ID() string              { return w.id }
func (w *Wizard[D]) Kind() domain.WizardKind { return w.v.kind }

func (w *Wizard[D]) LastTouched() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

// Draft returns a copy of the accumulated draft.
func (w *Wizard[D]) Draft() D {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Wizard[D]) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Edit records values into the working set without running field rules.
// Unknown keys and wrongly typed values are still rejected.
func (w *Wizard[D]) Edit(values Values) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return w.snapshotLocked(), err
	}
	if _, err := w.candidateLocked(values); err != nil {
		return w.snapshotLocked(), err
	}

	w.working = overlay(w.working, values)
	for k := range values {
		w.clearErrorsLocked(k)
	}
	w.touchLocked()
	return w.snapshotLocked(), nil
}

// Next validates the current step against draft ⊕ working ⊕ values and
// advances on success. On failure neither the draft nor the step changes.
func (w *Wizard[D]) Next(values Values) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return w.snapshotLocked(), err
	}
	if w.step >= len(w.v.steps)-1 {
		return w.snapshotLocked(), fmt.Errorf("next from final step: %w", domain.ErrIllegalTransition)
	}

	cand, err := w.candidateLocked(values)
	if err != nil {
		return w.snapshotLocked(), err
	}
	w.working = overlay(w.working, values)
	w.touchLocked()

	if err := ValidateStruct(w.validate, w.v.steps[w.step].section(&cand)); err != nil {
		w.recordErrorsLocked(err)
		return w.snapshotLocked(), err
	}

	w.draft = cand
	w.working = nil
	w.errs = nil
	w.step++
	return w.snapshotLocked(), nil
}

// Previous merges values into the draft without validating and steps back.
func (w *Wizard[D]) Previous(values Values) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return w.snapshotLocked(), err
	}
	if w.step == 0 {
		return w.snapshotLocked(), fmt.Errorf("previous from first step: %w", domain.ErrIllegalTransition)
	}

	cand, err := w.candidateLocked(values)
	if err != nil {
		return w.snapshotLocked(), err
	}

	w.draft = cand
	w.working = nil
	w.errs = nil
	w.step--
	w.touchLocked()
	return w.snapshotLocked(), nil
}

// Preview merges values into the draft and returns the composed view.
func (w *Wizard[D]) Preview(values Values) (Preview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return Preview{}, err
	}
	cand, err := w.candidateLocked(values)
	if err != nil {
		return Preview{}, err
	}

	w.draft = cand
	w.working = nil
	w.touchLocked()

	score := w.v.score(w.scoring, cand)
	return Preview{
		Kind:         w.v.kind,
		Sections:     w.v.preview(cand),
		Completeness: score,
		Band:         w.scoring.Band(score),
	}, nil
}

// Submit gates on completeness, validates every step and hands the draft to
// the submit func. The call runs without holding the lock; the wizard stays
// in StatusSubmitting until it returns and rejects every mutation meanwhile.
func (w *Wizard[D]) Submit(ctx context.Context, values Values) (Snapshot, error) {
	draft, gen, err := w.beginSubmit(values)
	if err != nil {
		return w.Snapshot(), err
	}

	sendErr := w.submit(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation || w.status != StatusSubmitting {
		return w.snapshotLocked(), fmt.Errorf("submit response after abandon: %w", domain.ErrWizardClosed)
	}
	w.touchLocked()
	if sendErr != nil {
		w.status = StatusEditing
		w.lastErr = sendErr.Error()
		return w.snapshotLocked(), sendErr
	}
	w.status = StatusSubmitted
	w.lastErr = ""
	return w.snapshotLocked(), nil
}

func (w *Wizard[D]) beginSubmit(values Values) (D, uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero D
	if err := w.mutableLocked(); err != nil {
		return zero, 0, err
	}
	if w.step != len(w.v.steps)-1 {
		return zero, 0, fmt.Errorf("submit before final step: %w", domain.ErrIllegalTransition)
	}

	cand, err := w.candidateLocked(values)
	if err != nil {
		return zero, 0, err
	}
	w.working = overlay(w.working, values)
	w.touchLocked()

	if score := w.v.score(w.scoring, cand); !w.scoring.CanSubmit(score) {
		w.lastErr = fmt.Sprintf("completeness %d is below %d", score, w.scoring.Threshold)
		return zero, 0, fmt.Errorf("completeness %d < %d: %w", score, w.scoring.Threshold, domain.ErrCompletenessBelowThreshold)
	}

	if err := w.validateAllLocked(&cand); err != nil {
		w.recordErrorsLocked(err)
		return zero, 0, err
	}

	w.draft = cand
	w.working = nil
	w.errs = nil
	w.lastErr = ""
	w.status = StatusSubmitting
	return cand, w.generation, nil
}

// AddEntry appends entry (or an empty record) to a repeatable group of the
// current step.
func (w *Wizard[D]) AddEntry(group string, entry json.RawMessage) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list, err := w.groupLocked(group)
	if err != nil {
		return w.snapshotLocked(), err
	}
	if len(entry) == 0 {
		entry = json.RawMessage(`{}`)
	}
	return w.writeGroupLocked(group, append(list, entry))
}

// RemoveEntry deletes entry index from a repeatable group. Later entries move
// down so indices stay 0..n-1.
func (w *Wizard[D]) RemoveEntry(group string, index int) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list, err := w.groupLocked(group)
	if err != nil {
		return w.snapshotLocked(), err
	}
	if index < 0 || index >= len(list) {
		return w.snapshotLocked(), fmt.Errorf("%s[%d] of %d: %w", group, index, len(list), domain.ErrEntryIndexOutOfRange)
	}
	list = append(list[:index], list[index+1:]...)
	return w.writeGroupLocked(group, list)
}

// Abandon discards the wizard. Any submit response still in flight is
// dropped when it arrives.
func (w *Wizard[D]) Abandon() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status == StatusAbandoned {
		return
	}
	w.status = StatusAbandoned
	w.generation++
	w.working = nil
	w.touchLocked()
}

func (w *Wizard[D]) groupLocked(group string) ([]json.RawMessage, error) {
	if err := w.mutableLocked(); err != nil {
		return nil, err
	}
	found := false
	for _, g := range w.v.steps[w.step].groups {
		if g == group {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%q on step %s: %w", group, w.v.steps[w.step].key, domain.ErrUnknownGroup)
	}

	live, err := w.liveObjectLocked()
	if err != nil {
		return nil, err
	}
	var list []json.RawMessage
	if raw, ok := live[group]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode group %s: %w", group, err)
		}
	}
	return list, nil
}

func (w *Wizard[D]) writeGroupLocked(group string, list []json.RawMessage) (Snapshot, error) {
	if list == nil {
		list = []json.RawMessage{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return w.snapshotLocked(), fmt.Errorf("encode group %s: %w", group, err)
	}
	values := Values{group: raw}
	if _, err := w.candidateLocked(values); err != nil {
		return w.snapshotLocked(), err
	}

	w.working = overlay(w.working, values)
	w.clearErrorsLocked(group)
	w.touchLocked()
	return w.snapshotLocked(), nil
}

func (w *Wizard[D]) mutableLocked() error {
	switch w.status {
	case StatusSubmitting:
		return domain.ErrSubmissionInFlight
	case StatusSubmitted, StatusAbandoned:
		return fmt.Errorf("wizard %s is %s: %w", w.id, w.status, domain.ErrWizardClosed)
	}
	return nil
}

func (w *Wizard[D]) liveObjectLocked() (Values, error) {
	obj, err := objectOf(w.draft)
	if err != nil {
		return nil, err
	}
	return overlay(obj, w.working), nil
}

// candidateLocked is draft ⊕ working ⊕ values.
func (w *Wizard[D]) candidateLocked(values Values) (D, error) {
	live, err := w.liveObjectLocked()
	if err != nil {
		var zero D
		return zero, err
	}
	return decodeDraft[D](overlay(live, values))
}

func (w *Wizard[D]) validateAllLocked(d *D) error {
	fields := map[string]string{}
	for _, s := range w.v.steps {
		err := ValidateStruct(w.validate, s.section(d))
		if err == nil {
			continue
		}
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		for k, msg := range ve.Fields {
			fields[k] = msg
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (w *Wizard[D]) recordErrorsLocked(err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		w.errs = make(map[string]string, len(ve.Fields))
		for k, msg := range ve.Fields {
			w.errs[k] = msg
		}
	}
}

func (w *Wizard[D]) clearErrorsLocked(field string) {
	for k := range w.errs {
		if k == field || strings.HasPrefix(k, field+".") || strings.HasPrefix(k, field+"[") {
			delete(w.errs, k)
		}
	}
}

func (w *Wizard[D]) touchLocked() { w.touched = w.now() }

func (w *Wizard[D]) snapshotLocked() Snapshot {
	steps := make([]StepInfo, len(w.v.steps))
	for i, s := range w.v.steps {
		steps[i] = StepInfo{Key: s.key, Title: s.title}
	}

	// A working set that no longer decodes cannot happen: every write to it is
	// checked first. Fall back to the draft anyway.
	live, err := w.candidateLocked(nil)
	if err != nil {
		live = w.draft
	}
	score := w.v.score(w.scoring, live)

	var errs map[string]string
	if len(w.errs) > 0 {
		errs = make(map[string]string, len(w.errs))
		for k, v := range w.errs {
			errs[k] = v
		}
	}

	return Snapshot{
		ID:           w.id,
		Kind:         w.v.kind,
		Status:       w.status,
		Step:         w.step,
		StepKey:      w.v.steps[w.step].key,
		Steps:        steps,
		Draft:        live,
		Completeness: score,
		Band:         w.scoring.Band(score),
		Threshold:    w.scoring.Threshold,
		CanSubmit:    w.scoring.CanSubmit(score),
		Errors:       errs,
		LastError:    w.lastErr,
	}
}
