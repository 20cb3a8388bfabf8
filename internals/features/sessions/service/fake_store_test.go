package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	calModel "shopfloor_backend/internals/features/calendar/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type fakeStore struct {
	operators map[uuid.UUID]*mdModel.OperatorModel
	teams     map[uuid.UUID]*authModel.TeamUserModel
	shifts    []calModel.ShiftEntryModel
	sessions  map[uuid.UUID]*sessModel.OperatorSessionModel
	locks     []uuid.UUID
	saveErr   map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		operators: map[uuid.UUID]*mdModel.OperatorModel{},
		teams:     map[uuid.UUID]*authModel.TeamUserModel{},
		sessions:  map[uuid.UUID]*sessModel.OperatorSessionModel{},
		saveErr:   map[uuid.UUID]error{},
	}
}

func (f *fakeStore) addOperator(badge string) *mdModel.OperatorModel {
	op := &mdModel.OperatorModel{OperatorID: uuid.New(), OperatorBadgeNum: badge, OperatorName: "Op " + badge, OperatorActive: true}
	f.operators[op.OperatorID] = op
	return op
}

func (f *fakeStore) addTeam(name string, grace int) *authModel.TeamUserModel {
	t := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserUsername: name, TeamUserIsActive: true, TeamUserLoginGracePeriod: grace}
	f.teams[t.TeamUserID] = t
	return t
}

func (f *fakeStore) addShift(team uuid.UUID, date time.Time, start, end string) {
	f.shifts = append(f.shifts, calModel.ShiftEntryModel{
		ShiftEntryID:         uuid.New(),
		ShiftEntryTeamUserID: team,
		ShiftEntryDate:       dbtime.DateOf(date),
		ShiftEntryStart:      dbtime.MustParse(start),
		ShiftEntryEnd:        dbtime.MustParse(end),
	})
}

func (f *fakeStore) addSession(s sessModel.OperatorSessionModel) *sessModel.OperatorSessionModel {
	if s.OperatorSessionID == uuid.Nil {
		s.OperatorSessionID = uuid.New()
	}
	cp := s
	f.sessions[s.OperatorSessionID] = &cp
	return &cp
}

func (f *fakeStore) session(id uuid.UUID) sessModel.OperatorSessionModel {
	return *f.sessions[id]
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	snapshot := make(map[uuid.UUID]sessModel.OperatorSessionModel, len(f.sessions))
	for id, s := range f.sessions {
		snapshot[id] = *s
	}
	if err := fn(f); err != nil {
		f.sessions = make(map[uuid.UUID]*sessModel.OperatorSessionModel, len(snapshot))
		for id, s := range snapshot {
			cp := s
			f.sessions[id] = &cp
		}
		return err
	}
	return nil
}

func (f *fakeStore) LockOperator(ctx context.Context, operatorID uuid.UUID) error {
	f.locks = append(f.locks, operatorID)
	return nil
}

func (f *fakeStore) FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error) {
	for _, op := range f.operators {
		if mdModel.NormalizeBadge(op.OperatorBadgeNum) == mdModel.NormalizeBadge(badge) {
			return op, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindOperator(ctx context.Context, id uuid.UUID) (*mdModel.OperatorModel, error) {
	return f.operators[id], nil
}

func (f *fakeStore) OperatorLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if op, ok := f.operators[id]; ok {
			out[id] = op.OperatorBadgeNum + " " + op.OperatorName
		}
	}
	return out, nil
}

func (f *fakeStore) FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	return f.teams[id], nil
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

func (f *fakeStore) FindSession(ctx context.Context, id uuid.UUID, forUpdate bool) (*sessModel.OperatorSessionModel, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) filter(keep func(*sessModel.OperatorSessionModel) bool) []sessModel.OperatorSessionModel {
	var out []sessModel.OperatorSessionModel
	for _, s := range f.sessions {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OperatorSessionLoginTeamDate.Equal(out[j].OperatorSessionLoginTeamDate) {
			return out[i].OperatorSessionLoginTeamDate.Before(out[j].OperatorSessionLoginTeamDate)
		}
		return out[i].OperatorSessionLoginActual.Before(out[j].OperatorSessionLoginActual)
	})
	return out
}

func (f *fakeStore) ActiveSessionsOfOperator(ctx context.Context, operatorID uuid.UUID) ([]sessModel.OperatorSessionModel, error) {
	return f.filter(func(s *sessModel.OperatorSessionModel) bool {
		return s.OperatorSessionOperatorID == operatorID && s.IsActive()
	}), nil
}

func (f *fakeStore) ActiveSessionsUpTo(ctx context.Context, date time.Time) ([]sessModel.OperatorSessionModel, error) {
	return f.filter(func(s *sessModel.OperatorSessionModel) bool {
		return s.IsActive() && !s.OperatorSessionLoginTeamDate.After(date)
	}), nil
}

func (f *fakeStore) CompletedWithoutBreak(ctx context.Context, from, to time.Time) ([]sessModel.OperatorSessionModel, error) {
	return f.filter(func(s *sessModel.OperatorSessionModel) bool {
		d := s.OperatorSessionLoginTeamDate
		return s.OperatorSessionStatus == sessModel.StatusCompleted &&
			s.OperatorSessionBreakMinutes == nil &&
			s.OperatorSessionLogoffTeamTime != nil &&
			!d.Before(from) && !d.After(to)
	}), nil
}

func (f *fakeStore) TeamSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]sessModel.OperatorSessionModel, error) {
	return f.filter(func(s *sessModel.OperatorSessionModel) bool {
		if s.OperatorSessionTeamUserID != teamUserID || !dbtime.SameDate(s.OperatorSessionLoginTeamDate, date) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if s.OperatorSessionStatus == st {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeStore) CreateSession(ctx context.Context, s *sessModel.OperatorSessionModel) error {
	if s.OperatorSessionID == uuid.Nil {
		s.OperatorSessionID = uuid.New()
	}
	cp := *s
	f.sessions[s.OperatorSessionID] = &cp
	return nil
}

func (f *fakeStore) SaveSession(ctx context.Context, s *sessModel.OperatorSessionModel) error {
	if err := f.saveErr[s.OperatorSessionID]; err != nil {
		return err
	}
	cp := *s
	f.sessions[s.OperatorSessionID] = &cp
	return nil
}
