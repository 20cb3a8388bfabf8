package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopfloor_backend/internals/helpers/apperr"
)

type orderDraft struct {
	Line    string   `json:"line"`
	Workers []string `json:"workers"`
	Qty     int      `json:"qty"`
	Nobody  bool     `json:"nobody"`
}

type orderWorld struct {
	lines     []Option
	workers   []Option
	commits   int
	commitErr error
}

func orderFlow(w *orderWorld) Flow[orderDraft] {
	return Flow[orderDraft]{
		Kind:    "order_wip",
		Landing: "/orders",
		Steps: []Step[orderDraft]{
			{
				Name: "line",
				Options: func(ctx context.Context, a Actor, d *orderDraft) ([]Option, error) {
					return w.lines, nil
				},
				Selected: func(d *orderDraft) []string {
					if d.Line == "" {
						return nil
					}
					return []string{d.Line}
				},
				Apply: func(ctx context.Context, a Actor, d *orderDraft, v []string) error {
					d.Line = v[0]
					d.Nobody = v[0] == "team"
					return nil
				},
			},
			{
				Name:  "workers",
				Multi: true,
				Options: func(ctx context.Context, a Actor, d *orderDraft) ([]Option, error) {
					return w.workers, nil
				},
				Skip:     func(d *orderDraft) bool { return d.Nobody },
				Selected: func(d *orderDraft) []string { return d.Workers },
				Apply: func(ctx context.Context, a Actor, d *orderDraft, v []string) error {
					d.Workers = v
					return nil
				},
			},
			{
				Name:  "qty",
				Input: InputNumber,
				Apply: func(ctx context.Context, a Actor, d *orderDraft, v []string) error {
					n, err := strconv.Atoi(v[0])
					if err != nil || n < 1 {
						return apperr.InvalidField("qty", "must be a positive number")
					}
					d.Qty = n
					return nil
				},
			},
		},
		Commit: func(ctx context.Context, a Actor, d *orderDraft) (any, error) {
			if w.commitErr != nil {
				return nil, w.commitErr
			}
			w.commits++
			return map[string]any{"line": d.Line, "qty": d.Qty}, nil
		},
	}
}

func newOrderEngine() (*Engine[orderDraft], *orderWorld, *MemoryStore, Actor) {
	w := &orderWorld{
		lines:   []Option{{Value: "a", Label: "Line A"}, {Value: "team", Label: "Team line"}},
		workers: []Option{{Value: "w1", Label: "W1"}, {Value: "w2", Label: "W2"}},
	}
	store := NewMemoryStore()
	return New(orderFlow(w), store, zerolog.Nop()), w, store, Actor{UserID: uuid.New()}
}

func TestViewRedirectsToFrontier(t *testing.T) {
	e, _, _, a := newOrderEngine()
	ctx := context.Background()

	v, err := e.View(ctx, a, 3)
	if err != nil {
		t.Fatal(err)
	}
	if v.Redirect == nil || v.Redirect.Step != 1 {
		t.Fatalf("redirect = %+v, want step 1", v.Redirect)
	}

	if _, err := e.View(ctx, a, 9); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestViewAutoSelectsSingleOption(t *testing.T) {
	e, w, _, a := newOrderEngine()
	w.lines = w.lines[:1]

	v, err := e.View(context.Background(), a, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !v.AutoSelected || len(v.Selected) != 1 || v.Selected[0] != "a" {
		t.Errorf("view = %+v, want auto-selected a", v)
	}
}

func TestSubmitRejectsValuesOutsideOptions(t *testing.T) {
	e, w, store, a := newOrderEngine()
	ctx := context.Background()

	_, err := e.Submit(ctx, a, 1, []string{"zzz"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Step != 1 {
		t.Fatalf("err = %v, want validation error at step 1", err)
	}
	if store.Has(a.UserID, e.Kind()) {
		t.Error("rejected submit must not create state")
	}

	if _, err := e.Submit(ctx, a, 1, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	// an option that disappears is rejected on the next submit
	w.workers = w.workers[:1]
	if _, err := e.Submit(ctx, a, 2, []string{"w2"}); !errors.As(err, &ve) {
		t.Fatalf("stale option err = %v", err)
	}
	if _, err := e.Submit(ctx, a, 1, []string{"a", "team"}); !errors.As(err, &ve) {
		t.Fatalf("single choice with two values err = %v", err)
	}
}

func TestSubmitCannotJumpAhead(t *testing.T) {
	e, _, _, a := newOrderEngine()
	_, err := e.Submit(context.Background(), a, 3, []string{"5"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Step != 1 {
		t.Fatalf("err = %v, want redirect to step 1", err)
	}
}

func TestConditionalSkip(t *testing.T) {
	e, _, _, a := newOrderEngine()
	ctx := context.Background()

	p, err := e.Submit(ctx, a, 1, []string{"team"})
	if err != nil {
		t.Fatal(err)
	}
	if p.NextStep != 3 {
		t.Fatalf("next = %d, want 3 (workers skipped)", p.NextStep)
	}
	v, err := e.View(ctx, a, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v.Redirect == nil || v.Redirect.Step != 3 {
		t.Errorf("skipped step redirect = %+v", v.Redirect)
	}
	p, err = e.Submit(ctx, a, 3, []string{"7"})
	if err != nil || !p.Commit {
		t.Fatalf("last submit = %+v, %v", p, err)
	}
}

func TestFreeInputValidationKeepsState(t *testing.T) {
	e, _, _, a := newOrderEngine()
	ctx := context.Background()
	mustSubmit(t, e, a, 1, "a")
	mustSubmit(t, e, a, 2, "w1", "w2", "w1")

	_, err := e.Submit(ctx, a, 3, []string{"-2"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Step != 3 || ve.Field != "qty" {
		t.Fatalf("err = %v", err)
	}
	v, err := e.View(ctx, a, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Selected) != 2 {
		t.Errorf("prefill after failed submit = %v, want [w1 w2]", v.Selected)
	}
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete", func(t *testing.T) {
		e, w, store, a := newOrderEngine()
		mustSubmit(t, e, a, 1, "a")
		_, err := e.Commit(ctx, a)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Step != 2 {
			t.Fatalf("err = %v, want step 2", err)
		}
		if w.commits != 0 || !store.Has(a.UserID, e.Kind()) {
			t.Error("incomplete commit must not write nor clear")
		}
	})

	t.Run("success clears state", func(t *testing.T) {
		e, w, store, a := newOrderEngine()
		mustSubmit(t, e, a, 1, "a")
		mustSubmit(t, e, a, 2, "w1")
		mustSubmit(t, e, a, 3, "4")
		out, err := e.Commit(ctx, a)
		if err != nil {
			t.Fatal(err)
		}
		if out.Landing != "/orders" || w.commits != 1 || store.Has(a.UserID, e.Kind()) {
			t.Errorf("outcome = %+v commits=%d", out, w.commits)
		}

		again, err := e.Commit(ctx, a)
		if err != nil || !again.NoOp || w.commits != 1 {
			t.Errorf("second commit = %+v, %v", again, err)
		}
	})

	t.Run("validation error keeps state", func(t *testing.T) {
		e, w, store, a := newOrderEngine()
		mustSubmit(t, e, a, 1, "a")
		mustSubmit(t, e, a, 2, "w1")
		mustSubmit(t, e, a, 3, "4")
		w.commitErr = apperr.InvalidField("workers", "w1 has no session that day")
		_, err := e.Commit(ctx, a)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Step != 2 {
			t.Fatalf("err = %v, want step 2", err)
		}
		if !store.Has(a.UserID, e.Kind()) {
			t.Error("state must survive a validation failure")
		}
	})

	t.Run("reference error clears state", func(t *testing.T) {
		e, w, store, a := newOrderEngine()
		mustSubmit(t, e, a, 1, "a")
		mustSubmit(t, e, a, 2, "w1")
		mustSubmit(t, e, a, 3, "4")
		w.commitErr = Missing("line a")
		_, err := e.Commit(ctx, a)
		var ref *ReferenceError
		if !errors.As(err, &ref) || ref.Landing != "/orders" {
			t.Fatalf("err = %v", err)
		}
		if store.Has(a.UserID, e.Kind()) {
			t.Error("state must be cleared after a reference error")
		}
	})

	t.Run("not found is a reference error", func(t *testing.T) {
		e, w, store, a := newOrderEngine()
		mustSubmit(t, e, a, 1, "team")
		mustSubmit(t, e, a, 3, "1")
		w.commitErr = apperr.NotFound("line not found")
		_, err := e.Commit(ctx, a)
		var ref *ReferenceError
		if !errors.As(err, &ref) || ref.Error() != "line not found" || ref.Landing != "/orders" {
			t.Fatalf("err = %v", err)
		}
		if store.Has(a.UserID, e.Kind()) {
			t.Error("state must be cleared")
		}
	})
}

func TestCancelAndKindsCoexist(t *testing.T) {
	w := &orderWorld{lines: []Option{{Value: "a"}}, workers: []Option{{Value: "w1"}}}
	store := NewMemoryStore()
	first := New(orderFlow(w), store, zerolog.Nop())
	other := orderFlow(w)
	other.Kind = "other_wip"
	second := New(other, store, zerolog.Nop())
	a := Actor{UserID: uuid.New()}
	ctx := context.Background()

	mustSubmit(t, first, a, 1, "a")
	mustSubmit(t, second, a, 1, "a")
	if err := first.Cancel(ctx, a); err != nil {
		t.Fatal(err)
	}
	if store.Has(a.UserID, "order_wip") || !store.Has(a.UserID, "other_wip") {
		t.Error("cancel must clear only its own kind")
	}
}

func mustSubmit[T any](t *testing.T, e *Engine[T], a Actor, step int, values ...string) {
	t.Helper()
	if _, err := e.Submit(context.Background(), a, step, values); err != nil {
		t.Fatalf("submit step %d %v: %v", step, values, err)
	}
}
