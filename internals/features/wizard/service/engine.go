package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopfloor_backend/internals/helpers/apperr"
)

// Actor is the authenticated user driving a wizard.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type InputKind string

const (
	InputChoice   InputKind = "choice"
	InputDate     InputKind = "date"
	InputTime     InputKind = "time"
	InputNumber   InputKind = "number"
	InputDuration InputKind = "duration"
)

// Step is one screen of a wizard over draft type T.
// Choice steps must set Options; submitted values outside the freshly computed options are rejected.
type Step[T any] struct {
	Name  string
	Input InputKind
	Multi bool

	Options  func(ctx context.Context, a Actor, draft *T) ([]Option, error)
	Skip     func(draft *T) bool
	Selected func(draft *T) []string
	Describe func(ctx context.Context, a Actor, draft *T) (map[string]any, error)
	Apply    func(ctx context.Context, a Actor, draft *T, values []string) error
}

func (s Step[T]) choice() bool { return s.Input == "" || s.Input == InputChoice }

// Flow defines a wizard kind.
type Flow[T any] struct {
	Kind    string
	Landing string
	Steps   []Step[T]
	Init    func(a Actor, draft *T)
	Commit  func(ctx context.Context, a Actor, draft *T) (any, error)
}

type Redirect struct {
	Step   int  `json:"step,omitempty"`
	Commit bool `json:"commit,omitempty"`
}

type StepView struct {
	Kind         string         `json:"kind"`
	Step         int            `json:"step"`
	Total        int            `json:"total"`
	Name         string         `json:"name,omitempty"`
	Input        InputKind      `json:"input,omitempty"`
	Multi        bool           `json:"multi,omitempty"`
	Options      []Option       `json:"options,omitempty"`
	Selected     []string       `json:"selected,omitempty"`
	AutoSelected bool           `json:"auto_selected,omitempty"`
	Hints        map[string]any `json:"hints,omitempty"`
	Redirect     *Redirect      `json:"redirect,omitempty"`
}

type Progress struct {
	Step     int  `json:"step"`
	NextStep int  `json:"next_step,omitempty"`
	Commit   bool `json:"commit"`
}

type Outcome struct {
	Kind    string `json:"kind"`
	Landing string `json:"landing"`
	NoOp    bool   `json:"no_op,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Runner is the type-erased surface the HTTP layer drives.
type Runner interface {
	Kind() string
	Landing() string
	View(ctx context.Context, a Actor, step int) (*StepView, error)
	Submit(ctx context.Context, a Actor, step int, values []string) (*Progress, error)
	Commit(ctx context.Context, a Actor) (*Outcome, error)
	Cancel(ctx context.Context, a Actor) error
}

type Engine[T any] struct {
	flow  Flow[T]
	store StateStore
	log   zerolog.Logger
}

var _ Runner = (*Engine[struct{}])(nil)

func New[T any](flow Flow[T], store StateStore, logger zerolog.Logger) *Engine[T] {
	if flow.Landing == "" {
		flow.Landing = "/"
	}
	return &Engine[T]{
		flow:  flow,
		store: store,
		log:   logger.With().Str("wizard", flow.Kind).Logger(),
	}
}

func (e *Engine[T]) Kind() string    { return e.flow.Kind }
func (e *Engine[T]) Landing() string { return e.flow.Landing }

type state[T any] struct {
	step  int
	draft T
}

func (e *Engine[T]) fresh(a Actor) *state[T] {
	st := &state[T]{}
	if e.flow.Init != nil {
		e.flow.Init(a, &st.draft)
	}
	return st
}

func (e *Engine[T]) load(ctx context.Context, a Actor) (*state[T], bool, error) {
	snap, err := e.store.Load(ctx, a.UserID, e.flow.Kind)
	if err != nil {
		return nil, false, fmt.Errorf("load wizard state: %w", err)
	}
	if snap == nil {
		return e.fresh(a), false, nil
	}
	st := &state[T]{step: snap.Step}
	if len(snap.Payload) > 0 {
		if err := sonic.Unmarshal(snap.Payload, &st.draft); err != nil {
			e.log.Warn().Err(err).Str("user_id", a.UserID.String()).Msg("discarding unreadable wizard state")
			return e.fresh(a), false, nil
		}
	}
	return st, true, nil
}

func (e *Engine[T]) save(ctx context.Context, a Actor, st *state[T]) error {
	payload, err := sonic.Marshal(st.draft)
	if err != nil {
		return fmt.Errorf("encode wizard state: %w", err)
	}
	return e.store.Save(ctx, a.UserID, e.flow.Kind, Snapshot{Step: st.step, Payload: payload})
}

func (e *Engine[T]) skipped(i int, draft *T) bool {
	s := e.flow.Steps[i-1]
	return s.Skip != nil && s.Skip(draft)
}

// next is the first applicable step after `after`, or 0 when only the commit remains.
func (e *Engine[T]) next(draft *T, after int) int {
	for i := after + 1; i <= len(e.flow.Steps); i++ {
		if !e.skipped(i, draft) {
			return i
		}
	}
	return 0
}

func (e *Engine[T]) checkRange(step int) error {
	if step < 1 || step > len(e.flow.Steps) {
		return apperr.InvalidField("step", "step must be between 1 and %d", len(e.flow.Steps))
	}
	return nil
}

func toRedirect(step int) *Redirect {
	if step == 0 {
		return &Redirect{Commit: true}
	}
	return &Redirect{Step: step}
}

// View renders step with options computed from the current draft.
func (e *Engine[T]) View(ctx context.Context, a Actor, step int) (*StepView, error) {
	if err := e.checkRange(step); err != nil {
		return nil, err
	}
	st, _, err := e.load(ctx, a)
	if err != nil {
		return nil, err
	}
	v := &StepView{Kind: e.flow.Kind, Step: step, Total: len(e.flow.Steps)}

	if frontier := e.next(&st.draft, st.step); frontier != 0 && step > frontier {
		v.Redirect = toRedirect(frontier)
		return v, nil
	}
	if e.skipped(step, &st.draft) {
		v.Redirect = toRedirect(e.next(&st.draft, step))
		return v, nil
	}

	s := e.flow.Steps[step-1]
	v.Name, v.Input, v.Multi = s.Name, s.Input, s.Multi
	if v.Input == "" {
		v.Input = InputChoice
	}
	if s.Selected != nil {
		v.Selected = s.Selected(&st.draft)
	}
	if s.choice() {
		opts, err := s.Options(ctx, a, &st.draft)
		if err != nil {
			return nil, err
		}
		v.Options = opts
		v.Selected = keepKnown(v.Selected, opts)
		if len(v.Selected) == 0 && len(opts) == 1 {
			v.Selected = []string{opts[0].Value}
			v.AutoSelected = true
		}
	}
	if s.Describe != nil {
		if v.Hints, err = s.Describe(ctx, a, &st.draft); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Submit validates and stores the answer of one step. On any error the stored state is untouched.
func (e *Engine[T]) Submit(ctx context.Context, a Actor, step int, values []string) (*Progress, error) {
	if err := e.checkRange(step); err != nil {
		return nil, err
	}
	st, _, err := e.load(ctx, a)
	if err != nil {
		return nil, err
	}
	if frontier := e.next(&st.draft, st.step); frontier != 0 && step > frontier {
		return nil, &ValidationError{Step: frontier, Message: fmt.Sprintf("complete step %d first", frontier)}
	}
	if e.skipped(step, &st.draft) {
		return nil, &ValidationError{Step: step, Message: "this step does not apply"}
	}

	s := e.flow.Steps[step-1]
	if s.choice() {
		values = cleanValues(values)
		if err := e.checkChoice(ctx, a, step, s, &st.draft, values); err != nil {
			return nil, err
		}
	} else {
		values = trimValues(values)
		if len(values) == 0 || values[0] == "" {
			return nil, &ValidationError{Step: step, Field: s.Name, Message: "a value is required"}
		}
	}

	if err := s.Apply(ctx, a, &st.draft, values); err != nil {
		return nil, e.asStepError(step, err)
	}
	st.step = step
	if err := e.save(ctx, a, st); err != nil {
		return nil, err
	}
	n := e.next(&st.draft, step)
	return &Progress{Step: step, NextStep: n, Commit: n == 0}, nil
}

func (e *Engine[T]) checkChoice(ctx context.Context, a Actor, step int, s Step[T], draft *T, values []string) error {
	switch {
	case len(values) == 0 && s.Multi:
		return &ValidationError{Step: step, Field: s.Name, Message: "select at least one option"}
	case len(values) == 0:
		return &ValidationError{Step: step, Field: s.Name, Message: "select an option"}
	case len(values) > 1 && !s.Multi:
		return &ValidationError{Step: step, Field: s.Name, Message: "select exactly one option"}
	}
	opts, err := s.Options(ctx, a, draft)
	if err != nil {
		return err
	}
	allowed := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		allowed[o.Value] = struct{}{}
	}
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			return &ValidationError{Step: step, Field: s.Name, Message: fmt.Sprintf("%s is not a valid choice", v)}
		}
	}
	return nil
}

// Commit runs the flow's commit against the completed draft.
// A missing slot is a benign no-op so double submits are harmless.
func (e *Engine[T]) Commit(ctx context.Context, a Actor) (*Outcome, error) {
	st, present, err := e.load(ctx, a)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Kind: e.flow.Kind, Landing: e.flow.Landing}
	if !present {
		out.NoOp = true
		return out, nil
	}
	if n := e.next(&st.draft, st.step); n != 0 {
		return nil, &ValidationError{Step: n, Message: "the wizard is not complete"}
	}

	res, err := e.flow.Commit(ctx, a, &st.draft)
	if err != nil {
		var ref *ReferenceError
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindNotFound {
			ref = &ReferenceError{What: ae.Message, msg: ae.Message}
		}
		if ref != nil || errors.As(err, &ref) {
			ref.Landing = e.flow.Landing
			if cerr := e.store.Clear(ctx, a.UserID, e.flow.Kind); cerr != nil {
				e.log.Error().Err(cerr).Msg("clear wizard state")
			}
			e.log.Warn().Str("user_id", a.UserID.String()).Str("missing", ref.What).Msg("wizard reset at commit")
			return nil, ref
		}
		cerr := e.asCommitError(&st.draft, err)
		var ve *ValidationError
		if errors.As(cerr, &ve) {
			// keep fields the commit refreshed so the offending step stays reachable
			if serr := e.save(ctx, a, st); serr != nil {
				e.log.Error().Err(serr).Msg("save wizard state after failed commit")
			}
		}
		return nil, cerr
	}

	if err := e.store.Clear(ctx, a.UserID, e.flow.Kind); err != nil {
		e.log.Error().Err(err).Msg("clear wizard state after commit")
	}
	e.log.Info().Str("user_id", a.UserID.String()).Msg("wizard committed")
	out.Result = res
	return out, nil
}

func (e *Engine[T]) Cancel(ctx context.Context, a Actor) error {
	return e.store.Clear(ctx, a.UserID, e.flow.Kind)
}

func (e *Engine[T]) stepOf(name string) int {
	for i, s := range e.flow.Steps {
		if s.Name == name {
			return i + 1
		}
	}
	return 0
}

func (e *Engine[T]) asStepError(step int, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Step == 0 {
			ve.Step = step
		}
		return ve
	}
	if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindInvalid {
		field := ae.Field
		if field == "" {
			field = e.flow.Steps[step-1].Name
		}
		return &ValidationError{Step: step, Field: field, Message: ae.Message}
	}
	return err
}

// asCommitError points commit-time validation failures at the step owning the field.
func (e *Engine[T]) asCommitError(draft *T, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Step == 0 {
			ve.Step = e.stepOf(ve.Field)
		}
		if ve.Step == 0 {
			ve.Step = e.lastStep(draft)
		}
		return ve
	}
	if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindInvalid {
		step := e.stepOf(ae.Field)
		if step == 0 {
			step = e.lastStep(draft)
		}
		return &ValidationError{Step: step, Field: ae.Field, Message: ae.Message}
	}
	return err
}

func (e *Engine[T]) lastStep(draft *T) int {
	for i := len(e.flow.Steps); i >= 1; i-- {
		if !e.skipped(i, draft) {
			return i
		}
	}
	return 1
}

func cleanValues(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// trimValues keeps positions, free-entry steps read values by index.
func trimValues(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func keepKnown(selected []string, opts []Option) []string {
	if len(selected) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		known[o.Value] = struct{}{}
	}
	var out []string
	for _, s := range selected {
		if _, ok := known[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
