package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	breakModel "shopfloor_backend/internals/features/breaks/model"
	calModel "shopfloor_backend/internals/features/calendar/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type presence struct {
	team, operator uuid.UUID
	date           time.Time
	status         sessModel.SessionStatus
}

type fakeStore struct {
	teams     map[uuid.UUID]*authModel.TeamUserModel
	shifts    []calModel.ShiftEntryModel
	operators map[uuid.UUID]mdModel.OperatorModel
	presences []presence
	breaks    map[uuid.UUID]breakModel.BreakModel
	assigned  []breakModel.OperatorBreakModel
	upserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:     map[uuid.UUID]*authModel.TeamUserModel{},
		operators: map[uuid.UUID]mdModel.OperatorModel{},
		breaks:    map[uuid.UUID]breakModel.BreakModel{},
	}
}

func (f *fakeStore) addTeam(name string) *authModel.TeamUserModel {
	sub := uuid.New()
	t := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserUsername: name, TeamUserIsActive: true, TeamUserSubdepartmentID: &sub}
	f.teams[t.TeamUserID] = t
	return t
}

func (f *fakeStore) addShift(team uuid.UUID, date time.Time) {
	f.shifts = append(f.shifts, calModel.ShiftEntryModel{
		ShiftEntryID:         uuid.New(),
		ShiftEntryTeamUserID: team,
		ShiftEntryDate:       dbtime.DateOf(date),
		ShiftEntryStart:      dbtime.At(8, 0, 0),
		ShiftEntryEnd:        dbtime.At(16, 0, 0),
	})
}

func (f *fakeStore) addBreak(name, start string) uuid.UUID {
	st := dbtime.MustParse(start)
	b := breakModel.BreakModel{BreakID: uuid.New(), BreakName: name, BreakTimeStart: st, BreakTimeEnd: st.AddMinutes(30)}
	f.breaks[b.BreakID] = b
	return b.BreakID
}

func (f *fakeStore) addOperator(badge string, team uuid.UUID, date time.Time, status sessModel.SessionStatus) uuid.UUID {
	op := mdModel.OperatorModel{OperatorID: uuid.New(), OperatorBadgeNum: badge, OperatorName: "Op " + badge, OperatorActive: true}
	f.operators[op.OperatorID] = op
	f.presences = append(f.presences, presence{team: team, operator: op.OperatorID, date: dbtime.DateOf(date), status: status})
	return op.OperatorID
}

// attend adds another session of an existing operator.
func (f *fakeStore) attend(op, team uuid.UUID, date time.Time, status sessModel.SessionStatus) {
	f.presences = append(f.presences, presence{team: team, operator: op, date: dbtime.DateOf(date), status: status})
}

func (f *fakeStore) breakOf(date time.Time, op uuid.UUID) *breakModel.OperatorBreakModel {
	for i := range f.assigned {
		if f.assigned[i].OperatorBreakOperatorID == op && dbtime.SameDate(f.assigned[i].OperatorBreakDate, date) {
			return &f.assigned[i]
		}
	}
	return nil
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	assigned := append([]breakModel.OperatorBreakModel(nil), f.assigned...)
	breaks := make(map[uuid.UUID]breakModel.BreakModel, len(f.breaks))
	for k, v := range f.breaks {
		breaks[k] = v
	}
	if err := fn(f); err != nil {
		f.assigned, f.breaks = assigned, breaks
		return err
	}
	return nil
}

func (f *fakeStore) PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error) {
	var out []authModel.TeamUserModel
	for _, t := range f.teams {
		if t.TeamUserIsActive && t.TeamUserSubdepartmentID != nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamUserUsername < out[j].TeamUserUsername })
	return out, nil
}

func (f *fakeStore) FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	if t, ok := f.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error) {
	for i := range f.shifts {
		if f.shifts[i].ShiftEntryTeamUserID == teamUserID && dbtime.SameDate(f.shifts[i].ShiftEntryDate, date) {
			cp := f.shifts[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) OperatorsInSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]mdModel.OperatorModel, error) {
	seen := map[uuid.UUID]bool{}
	var out []mdModel.OperatorModel
	for _, p := range f.presences {
		if p.team != teamUserID || !dbtime.SameDate(p.date, date) || seen[p.operator] {
			continue
		}
		for _, st := range statuses {
			if p.status == st {
				seen[p.operator] = true
				out = append(out, f.operators[p.operator])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OperatorBadgeNum < out[j].OperatorBadgeNum })
	return out, nil
}

func (f *fakeStore) Breaks(ctx context.Context) ([]breakModel.BreakModel, error) {
	out := make([]breakModel.BreakModel, 0, len(f.breaks))
	for _, b := range f.breaks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BreakTimeStart.Before(out[j].BreakTimeStart.Time) })
	return out, nil
}

func (f *fakeStore) FindBreak(ctx context.Context, id uuid.UUID) (*breakModel.BreakModel, error) {
	if b, ok := f.breaks[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateBreak(ctx context.Context, m *breakModel.BreakModel) error {
	m.BreakID = uuid.New()
	f.breaks[m.BreakID] = *m
	return nil
}

func (f *fakeStore) SaveBreak(ctx context.Context, m *breakModel.BreakModel) error {
	f.breaks[m.BreakID] = *m
	return nil
}

func (f *fakeStore) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	delete(f.breaks, id)
	return nil
}

func (f *fakeStore) OperatorBreaksOn(ctx context.Context, date time.Time, operatorIDs []uuid.UUID) ([]breakModel.OperatorBreakModel, error) {
	var out []breakModel.OperatorBreakModel
	for _, id := range operatorIDs {
		if b := f.breakOf(date, id); b != nil {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertOperatorBreak(ctx context.Context, m *breakModel.OperatorBreakModel) (bool, error) {
	f.upserts++
	if cur := f.breakOf(m.OperatorBreakDate, m.OperatorBreakOperatorID); cur != nil {
		if cur.OperatorBreakTeamUserID != m.OperatorBreakTeamUserID {
			return false, nil
		}
		cur.OperatorBreakBreakID = m.OperatorBreakBreakID
		return true, nil
	}
	m.OperatorBreakID = uuid.New()
	f.assigned = append(f.assigned, *m)
	return true, nil
}
