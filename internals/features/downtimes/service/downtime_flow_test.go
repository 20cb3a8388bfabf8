package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	wizard "shopfloor_backend/internals/features/wizard/service"
)

func submit(t *testing.T, r wizard.Runner, a wizard.Actor, step int, values ...string) *wizard.Progress {
	t.Helper()
	p, err := r.Submit(context.Background(), a, step, values)
	if err != nil {
		t.Fatalf("submit step %d %v: %v", step, values, err)
	}
	return p
}

func TestPlannerDowntimeWizard(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	r := wizard.New(PlannerFlow(serviceAt(w.f, workDay.AddDate(0, 0, 1), "09:00")), wizard.NewMemoryStore(), zerolog.Nop())
	planner := wizard.Actor{UserID: uuid.New(), Role: "planner"}

	submit(t, r, planner, 1, w.team.TeamUserID.String())
	submit(t, r, planner, 2, "2024-05-14")

	v, err := r.View(ctx, planner, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Options) != 2 {
		t.Fatalf("session options = %+v", v.Options)
	}
	var ve *wizard.ValidationError
	if _, err := r.Submit(ctx, planner, 3, []string{w.aliceNoon.String()}); !errors.As(err, &ve) || ve.Step != 3 {
		t.Fatalf("second session of an operator err = %v", err)
	}
	submit(t, r, planner, 3, w.aliceMorning.String(), w.bob.String())

	v, err = r.View(ctx, planner, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Options) != 2 {
		t.Fatalf("downtime options = %+v, other subdepartments excluded", v.Options)
	}
	submit(t, r, planner, 4, w.meeting.String())

	v, err = r.View(ctx, planner, 5)
	if err != nil {
		t.Fatal(err)
	}
	if v.Hints["editable"] != "repetition" || v.Hints["downtime_value"] != "15.00" {
		t.Fatalf("duration hints = %+v", v.Hints)
	}
	if _, err := r.Submit(ctx, planner, 5, []string{"0"}); !errors.As(err, &ve) || ve.Field != "duration" {
		t.Fatalf("zero repetition err = %v", err)
	}
	if p := submit(t, r, planner, 5, "2"); !p.Commit {
		t.Fatalf("progress = %+v", p)
	}

	out, err := r.Commit(ctx, planner)
	if err != nil {
		t.Fatal(err)
	}
	res := out.Result.(*DeclareResult)
	if len(res.Declarations) != 2 || len(w.f.declarations) != 2 {
		t.Fatalf("declarations = %d", len(w.f.declarations))
	}
	for _, d := range w.f.declarations {
		if !d.DowntimeDeclarationTotal.Equal(decimal.NewFromInt(30)) {
			t.Errorf("total = %s, want 15 x 2", d.DowntimeDeclarationTotal)
		}
	}
}

func TestTeamDowntimeWizardVariable(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	r := wizard.New(TeamFlow(serviceAt(w.f, workDay, "10:00")), wizard.NewMemoryStore(), zerolog.Nop())
	team := wizard.Actor{UserID: w.team.TeamUserID, Role: "team"}

	submit(t, r, team, 1, w.bob.String())
	submit(t, r, team, 2, w.machine.String())

	v, err := r.View(ctx, team, 3)
	if err != nil {
		t.Fatal(err)
	}
	if v.Hints["editable"] != "downtime_value" || v.Hints["repetition_locked"] != true {
		t.Fatalf("duration hints = %+v", v.Hints)
	}
	var ve *wizard.ValidationError
	if _, err := r.Submit(ctx, team, 3, []string{"0.004"}); !errors.As(err, &ve) || ve.Field != "duration" {
		t.Fatalf("tiny value err = %v", err)
	}
	submit(t, r, team, 3, "7.25")

	// a different downtime type drops the entered duration
	submit(t, r, team, 2, w.meeting.String())
	if _, err := r.Commit(ctx, team); !errors.As(err, &ve) || ve.Step != 3 {
		t.Fatalf("commit without duration err = %v", err)
	}
	submit(t, r, team, 2, w.machine.String())
	submit(t, r, team, 3, "7.25")

	if _, err := r.Commit(ctx, team); err != nil {
		t.Fatal(err)
	}
	d := w.f.declarations[0]
	if d.DowntimeDeclarationSessionID != w.bob || !d.DowntimeDeclarationTotal.Equal(decimal.RequireFromString("7.25")) {
		t.Errorf("declaration = %+v", d)
	}
}

func TestDowntimeWizardTypeDeletedBeforeCommit(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	r := wizard.New(TeamFlow(serviceAt(w.f, workDay, "10:00")), wizard.NewMemoryStore(), zerolog.Nop())
	team := wizard.Actor{UserID: w.team.TeamUserID, Role: "team"}

	submit(t, r, team, 1, w.bob.String())
	submit(t, r, team, 2, w.machine.String())
	submit(t, r, team, 3, "5")
	delete(w.f.downtimes, w.machine)

	_, err := r.Commit(ctx, team)
	var ref *wizard.ReferenceError
	if !errors.As(err, &ref) || ref.Landing != "/team/dashboard" {
		t.Fatalf("err = %v, want reference error", err)
	}
	if len(w.f.declarations) != 0 {
		t.Fatal("nothing may be written")
	}
}
