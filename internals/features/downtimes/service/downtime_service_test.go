package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

var workDay = time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

type world struct {
	f            *fakeStore
	sub          uuid.UUID
	team         *authModel.TeamUserModel
	other        *authModel.TeamUserModel
	machine      uuid.UUID
	meeting      uuid.UUID
	foreign      uuid.UUID
	aliceMorning uuid.UUID
	aliceNoon    uuid.UUID
	bob          uuid.UUID
	ignored      uuid.UUID
	stranger     uuid.UUID
}

func newWorld() *world {
	f := newFakeStore()
	w := &world{f: f, sub: uuid.New()}
	otherSub := uuid.New()
	w.team = f.addTeam("team-a", w.sub)
	w.other = f.addTeam("team-b", otherSub)
	w.machine = f.addDowntime("Machine", w.sub, "")
	w.meeting = f.addDowntime("Meeting", w.sub, "15")
	w.foreign = f.addDowntime("Other", otherSub, "")

	alice, bob, carl, dora := f.addOperator("A1"), f.addOperator("B2"), f.addOperator("C3"), f.addOperator("D4")
	w.aliceMorning = f.addSession(alice, w.team.TeamUserID, workDay, "08:00", sessModel.StatusCompleted)
	w.aliceNoon = f.addSession(alice, w.team.TeamUserID, workDay, "12:00", sessModel.StatusActive)
	w.bob = f.addSession(bob, w.team.TeamUserID, workDay, "08:05", sessModel.StatusActive)
	w.ignored = f.addSession(carl, w.team.TeamUserID, workDay, "07:00", sessModel.StatusIgnore)
	w.stranger = f.addSession(dora, w.other.TeamUserID, workDay, "08:00", sessModel.StatusActive)
	return w
}

func serviceAt(store Store, date time.Time, hhmm string) *Service {
	at := dbtime.Combine(date, dbtime.MustParse(hhmm), time.UTC)
	return NewService(store, dbtime.Zone{Clock: dbtime.FixedClock{At: at}, Loc: time.UTC}, zerolog.Nop())
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (w *world) declare(dt uuid.UUID, value *decimal.Decimal, rep int, sessions ...uuid.UUID) (*DeclareResult, error) {
	return serviceAt(w.f, workDay, "15:00").Declare(context.Background(), DeclareInput{
		TeamUserID: w.team.TeamUserID,
		Date:       workDay,
		SessionIDs: sessions,
		DowntimeID: dt,
		Value:      value,
		Repetition: rep,
	})
}

func TestChoicesOnePerOperator(t *testing.T) {
	w := newWorld()
	got, err := serviceAt(w.f, workDay, "15:00").Choices(context.Background(), w.team.TeamUserID, workDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("choices = %+v, want one per non-ignored operator", got)
	}
	if got[0].BadgeNum != "A1" || got[0].SessionID != w.aliceMorning {
		t.Errorf("first choice = %+v, want alice's earliest session", got[0])
	}
	if got[1].SessionID != w.bob {
		t.Errorf("second choice = %+v", got[1])
	}
}

func TestDeclareVariableDowntime(t *testing.T) {
	w := newWorld()
	res, err := w.declare(w.machine, dec("12.345"), 5, w.aliceMorning, w.bob, w.bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Declarations) != 2 || len(w.f.declarations) != 2 {
		t.Fatalf("declarations = %d stored = %d", len(res.Declarations), len(w.f.declarations))
	}
	for _, d := range w.f.declarations {
		if d.DowntimeDeclarationRepetition != 1 {
			t.Errorf("repetition = %d, variable downtime forces 1", d.DowntimeDeclarationRepetition)
		}
		if !d.DowntimeDeclarationValue.Equal(decimal.RequireFromString("12.35")) || !d.DowntimeDeclarationTotal.Equal(d.DowntimeDeclarationValue) {
			t.Errorf("value/total = %s/%s", d.DowntimeDeclarationValue, d.DowntimeDeclarationTotal)
		}
	}
}

func TestDeclareFixedDowntimeTotals(t *testing.T) {
	for rep := 1; rep <= 4; rep++ {
		w := newWorld()
		if _, err := w.declare(w.meeting, dec("99"), rep, w.bob); err != nil {
			t.Fatalf("rep %d: %v", rep, err)
		}
		d := w.f.declarations[0]
		if !d.DowntimeDeclarationValue.Equal(decimal.NewFromInt(15)) {
			t.Errorf("rep %d: value = %s, fixed value is locked", rep, d.DowntimeDeclarationValue)
		}
		if want := decimal.NewFromInt(int64(15 * rep)); !d.DowntimeDeclarationTotal.Equal(want) {
			t.Errorf("rep %d: total = %s, want %s", rep, d.DowntimeDeclarationTotal, want)
		}
	}
}

func TestDeclareRejectsWithoutWriting(t *testing.T) {
	tests := []struct {
		name     string
		dt       func(w *world) uuid.UUID
		value    *decimal.Decimal
		rep      int
		sessions func(w *world) []uuid.UUID
		kind     apperr.Kind
		field    string
	}{
		{
			name: "no sessions", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return nil }, kind: apperr.KindInvalid, field: "sessions",
		},
		{
			name: "downtime of another subdepartment", dt: func(w *world) uuid.UUID { return w.foreign }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob} }, kind: apperr.KindInvalid, field: "downtime",
		},
		{
			name: "fixed without repetition", dt: func(w *world) uuid.UUID { return w.meeting },
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob} }, kind: apperr.KindInvalid, field: "duration",
		},
		{
			name: "variable below minimum", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("0.001"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob} }, kind: apperr.KindInvalid, field: "duration",
		},
		{
			name: "ignored session", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob, w.ignored} }, kind: apperr.KindInvalid, field: "sessions",
		},
		{
			name: "session of another team", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob, w.stranger} }, kind: apperr.KindInvalid, field: "sessions",
		},
		{
			name: "operator twice", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.aliceMorning, w.aliceNoon} }, kind: apperr.KindInvalid, field: "sessions",
		},
		{
			name: "unknown session", dt: func(w *world) uuid.UUID { return w.machine }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob, uuid.New()} }, kind: apperr.KindNotFound,
		},
		{
			name: "unknown downtime", dt: func(w *world) uuid.UUID { return uuid.New() }, value: dec("5"),
			sessions: func(w *world) []uuid.UUID { return []uuid.UUID{w.bob} }, kind: apperr.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			_, err := w.declare(tt.dt(w), tt.value, tt.rep, tt.sessions(w)...)
			ae, ok := apperr.As(err)
			if !ok || ae.Kind != tt.kind || (tt.field != "" && ae.Field != tt.field) {
				t.Fatalf("err = %v, want kind %v field %q", err, tt.kind, tt.field)
			}
			if len(w.f.declarations) != 0 {
				t.Fatalf("declarations written: %d", len(w.f.declarations))
			}
		})
	}
}

func TestUpdateDeclaration(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	s := serviceAt(w.f, workDay, "15:00")
	if _, err := w.declare(w.meeting, nil, 1, w.bob); err != nil {
		t.Fatal(err)
	}
	if _, err := w.declare(w.machine, dec("4"), 1, w.aliceMorning); err != nil {
		t.Fatal(err)
	}
	fixed, variable := w.f.declarations[0].DowntimeDeclarationID, w.f.declarations[1].DowntimeDeclarationID

	two := 2
	m, err := s.UpdateDeclaration(ctx, fixed, dec("99"), &two)
	if err != nil {
		t.Fatal(err)
	}
	if !m.DowntimeDeclarationValue.Equal(decimal.NewFromInt(15)) || !m.DowntimeDeclarationTotal.Equal(decimal.NewFromInt(30)) {
		t.Errorf("fixed update = %s x %d = %s", m.DowntimeDeclarationValue, m.DowntimeDeclarationRepetition, m.DowntimeDeclarationTotal)
	}

	three := 3
	m, err = s.UpdateDeclaration(ctx, variable, dec("7.5"), &three)
	if err != nil {
		t.Fatal(err)
	}
	if m.DowntimeDeclarationRepetition != 1 || !m.DowntimeDeclarationTotal.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("variable update = %s x %d = %s", m.DowntimeDeclarationValue, m.DowntimeDeclarationRepetition, m.DowntimeDeclarationTotal)
	}

	if _, err := s.UpdateDeclaration(ctx, variable, dec("0"), nil); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("zero value err = %v", err)
	}
	if got := w.f.declarations[1].DowntimeDeclarationValue; !got.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("rejected update changed value to %s", got)
	}
	if _, err := s.UpdateDeclaration(ctx, uuid.New(), nil, nil); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown declaration err = %v", err)
	}
	if err := s.DeleteDeclaration(ctx, fixed); err != nil || len(w.f.declarations) != 1 {
		t.Errorf("delete err = %v remaining = %d", err, len(w.f.declarations))
	}
}

func TestDowntimeTypes(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	s := serviceAt(w.f, workDay, "09:00")

	if _, err := s.CreateDowntimeType(ctx, DowntimeTypeInput{Name: "Setup", SubdepartmentID: w.sub, FixedDuration: true}); err == nil {
		t.Fatal("fixed type without value must fail")
	} else if ae, _ := apperr.As(err); ae == nil || ae.Field != "downtime_value" {
		t.Fatalf("err = %v", err)
	}
	m, err := s.CreateDowntimeType(ctx, DowntimeTypeInput{Name: " Setup ", SubdepartmentID: w.sub, FixedDuration: true, Value: dec("10")})
	if err != nil {
		t.Fatal(err)
	}
	if m.DowntimeName != "Setup" {
		t.Errorf("name = %q", m.DowntimeName)
	}

	if _, err := w.declare(w.meeting, nil, 1, w.bob); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDowntimeType(ctx, w.meeting); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("delete used type err = %v", err)
	}
	if err := s.DeleteDowntimeType(ctx, m.DowntimeID); err != nil {
		t.Errorf("delete unused type: %v", err)
	}
	if _, ok := w.f.downtimes[m.DowntimeID]; ok {
		t.Error("type still stored")
	}
}
