package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dtModel "shopfloor_backend/internals/features/downtimes/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type fakeStore struct {
	teams        map[uuid.UUID]*authModel.TeamUserModel
	operators    map[uuid.UUID]mdModel.OperatorModel
	sessions     map[uuid.UUID]sessModel.OperatorSessionModel
	downtimes    map[uuid.UUID]dtModel.DowntimeModel
	declarations []dtModel.DowntimeDeclarationModel
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:     map[uuid.UUID]*authModel.TeamUserModel{},
		operators: map[uuid.UUID]mdModel.OperatorModel{},
		sessions:  map[uuid.UUID]sessModel.OperatorSessionModel{},
		downtimes: map[uuid.UUID]dtModel.DowntimeModel{},
	}
}

func (f *fakeStore) addTeam(name string, sub uuid.UUID) *authModel.TeamUserModel {
	t := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserUsername: name, TeamUserIsActive: true, TeamUserSubdepartmentID: &sub}
	f.teams[t.TeamUserID] = t
	return t
}

func (f *fakeStore) addOperator(badge string) uuid.UUID {
	op := mdModel.OperatorModel{OperatorID: uuid.New(), OperatorBadgeNum: badge, OperatorName: "Op " + badge, OperatorActive: true}
	f.operators[op.OperatorID] = op
	return op.OperatorID
}

func (f *fakeStore) addSession(op, team uuid.UUID, date time.Time, login string, status sessModel.SessionStatus) uuid.UUID {
	tod := dbtime.MustParse(login)
	s := sessModel.OperatorSessionModel{
		OperatorSessionID:            uuid.New(),
		OperatorSessionOperatorID:    op,
		OperatorSessionTeamUserID:    team,
		OperatorSessionLoginActual:   dbtime.Combine(date, tod, time.UTC),
		OperatorSessionLoginTeamDate: dbtime.DateOf(date),
		OperatorSessionLoginTeamTime: tod,
		OperatorSessionStatus:        status,
	}
	f.sessions[s.OperatorSessionID] = s
	return s.OperatorSessionID
}

func (f *fakeStore) addDowntime(name string, sub uuid.UUID, fixed string) uuid.UUID {
	d := dtModel.DowntimeModel{DowntimeID: uuid.New(), DowntimeName: name, DowntimeSubdepartmentID: sub}
	if fixed != "" {
		v := decimal.RequireFromString(fixed)
		d.DowntimeFixedDuration, d.DowntimeValue = true, &v
	}
	f.downtimes[d.DowntimeID] = d
	return d.DowntimeID
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	decls := append([]dtModel.DowntimeDeclarationModel(nil), f.declarations...)
	dts := make(map[uuid.UUID]dtModel.DowntimeModel, len(f.downtimes))
	for k, v := range f.downtimes {
		dts[k] = v
	}
	if err := fn(f); err != nil {
		f.declarations, f.downtimes = decls, dts
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

func (f *fakeStore) Downtimes(ctx context.Context, subdepartmentID *uuid.UUID) ([]dtModel.DowntimeModel, error) {
	var out []dtModel.DowntimeModel
	for _, d := range f.downtimes {
		if subdepartmentID == nil || d.DowntimeSubdepartmentID == *subdepartmentID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DowntimeName < out[j].DowntimeName })
	return out, nil
}

func (f *fakeStore) FindDowntime(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeModel, error) {
	if d, ok := f.downtimes[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateDowntime(ctx context.Context, m *dtModel.DowntimeModel) error {
	m.DowntimeID = uuid.New()
	f.downtimes[m.DowntimeID] = *m
	return nil
}

func (f *fakeStore) SaveDowntime(ctx context.Context, m *dtModel.DowntimeModel) error {
	f.downtimes[m.DowntimeID] = *m
	return nil
}

func (f *fakeStore) DeleteDowntime(ctx context.Context, id uuid.UUID) error {
	delete(f.downtimes, id)
	return nil
}

func (f *fakeStore) DowntimeInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, d := range f.declarations {
		if d.DowntimeDeclarationDowntimeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SessionChoices(ctx context.Context, teamUserID uuid.UUID, date time.Time) ([]SessionChoice, error) {
	first := map[uuid.UUID]sessModel.OperatorSessionModel{}
	for _, s := range f.sessions {
		if s.OperatorSessionTeamUserID != teamUserID || !dbtime.SameDate(s.OperatorSessionLoginTeamDate, date) ||
			s.OperatorSessionStatus == sessModel.StatusIgnore {
			continue
		}
		cur, ok := first[s.OperatorSessionOperatorID]
		if !ok || s.OperatorSessionLoginActual.Before(cur.OperatorSessionLoginActual) {
			first[s.OperatorSessionOperatorID] = s
		}
	}
	out := make([]SessionChoice, 0, len(first))
	for _, s := range first {
		op := f.operators[s.OperatorSessionOperatorID]
		out = append(out, SessionChoice{
			SessionID:    s.OperatorSessionID,
			OperatorID:   op.OperatorID,
			BadgeNum:     op.OperatorBadgeNum,
			OperatorName: op.OperatorName,
			LoginTime:    s.OperatorSessionLoginTeamTime,
		})
	}
	return out, nil
}

func (f *fakeStore) FindSession(ctx context.Context, id uuid.UUID) (*sessModel.OperatorSessionModel, error) {
	if s, ok := f.sessions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error {
	m.DowntimeDeclarationID = uuid.New()
	f.declarations = append(f.declarations, *m)
	return nil
}

func (f *fakeStore) FindDowntimeDeclaration(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeDeclarationModel, error) {
	for _, d := range f.declarations {
		if d.DowntimeDeclarationID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error {
	for i := range f.declarations {
		if f.declarations[i].DowntimeDeclarationID == m.DowntimeDeclarationID {
			f.declarations[i] = *m
		}
	}
	return nil
}

func (f *fakeStore) DeleteDowntimeDeclaration(ctx context.Context, id uuid.UUID) error {
	out := f.declarations[:0]
	for _, d := range f.declarations {
		if d.DowntimeDeclarationID != id {
			out = append(out, d)
		}
	}
	f.declarations = out
	return nil
}
