package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	calModel "shopfloor_backend/internals/features/calendar/model"
	declModel "shopfloor_backend/internals/features/declarations/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
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
	teams        map[uuid.UUID]*authModel.TeamUserModel
	shifts       []calModel.ShiftEntryModel
	pros         map[uuid.UUID]*mdModel.ProModel
	links        map[[2]uuid.UUID]bool
	routings     map[uuid.UUID]*rtModel.RoutingModel
	lines        map[uuid.UUID]rtModel.RoutingOperationLine
	operators    map[uuid.UUID]mdModel.OperatorModel
	presences    []presence
	declarations []declModel.DeclarationModel
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:     map[uuid.UUID]*authModel.TeamUserModel{},
		pros:      map[uuid.UUID]*mdModel.ProModel{},
		links:     map[[2]uuid.UUID]bool{},
		routings:  map[uuid.UUID]*rtModel.RoutingModel{},
		lines:     map[uuid.UUID]rtModel.RoutingOperationLine{},
		operators: map[uuid.UUID]mdModel.OperatorModel{},
	}
}

func (f *fakeStore) addTeam(name string, sub uuid.UUID) *authModel.TeamUserModel {
	t := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserUsername: name, TeamUserIsActive: true, TeamUserSubdepartmentID: &sub}
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

func (f *fakeStore) addPro(name, sku string, sub uuid.UUID) *mdModel.ProModel {
	p := &mdModel.ProModel{ProID: uuid.New(), ProName: name, ProSKU: sku, ProStatus: true}
	f.pros[p.ProID] = p
	f.links[[2]uuid.UUID{p.ProID, sub}] = true
	return p
}

func (f *fakeStore) addRouting(sku string, sub uuid.UUID, kind rtModel.DeclarationType) *rtModel.RoutingModel {
	r := &rtModel.RoutingModel{
		RoutingID: uuid.New(), RoutingSKU: sku, RoutingSubdepartmentID: sub, RoutingVersion: "v1",
		RoutingDeclarationType: kind, RoutingReady: true, RoutingStatus: true,
	}
	f.routings[r.RoutingID] = r
	return r
}

func (f *fakeStore) addLine(routing uuid.UUID, name, smv string, final bool) uuid.UUID {
	d := decimal.RequireFromString(smv)
	l := rtModel.RoutingOperationLine{
		RoutingOperationModel: rtModel.RoutingOperationModel{
			RoutingOperationID:          uuid.New(),
			RoutingOperationRoutingID:   routing,
			RoutingOperationOperationID: uuid.New(),
			RoutingOperationSMV:         &d,
			RoutingOperationFinal:       final,
		},
		OperationName: name,
	}
	f.lines[l.RoutingOperationID] = l
	return l.RoutingOperationID
}

func (f *fakeStore) addOperator(badge string, team uuid.UUID, date time.Time, status sessModel.SessionStatus) uuid.UUID {
	op := mdModel.OperatorModel{OperatorID: uuid.New(), OperatorBadgeNum: badge, OperatorName: "Op " + badge, OperatorActive: true}
	f.operators[op.OperatorID] = op
	f.presences = append(f.presences, presence{team: team, operator: op.OperatorID, date: dbtime.DateOf(date), status: status})
	return op.OperatorID
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	n := len(f.declarations)
	if err := fn(f); err != nil {
		f.declarations = f.declarations[:n]
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

func (f *fakeStore) ActivePros(ctx context.Context, subdepartmentID uuid.UUID) ([]mdModel.ProModel, error) {
	var out []mdModel.ProModel
	for _, p := range f.pros {
		if p.ProStatus && f.links[[2]uuid.UUID{p.ProID, subdepartmentID}] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProName < out[j].ProName })
	return out, nil
}

func (f *fakeStore) FindPro(ctx context.Context, id uuid.UUID) (*mdModel.ProModel, error) {
	if p, ok := f.pros[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ProInSubdepartment(ctx context.Context, proID, subdepartmentID uuid.UUID) (bool, error) {
	return f.links[[2]uuid.UUID{proID, subdepartmentID}], nil
}

func (f *fakeStore) ReadyRoutings(ctx context.Context, sku string, subdepartmentID uuid.UUID) ([]rtModel.RoutingModel, error) {
	var out []rtModel.RoutingModel
	for _, r := range f.routings {
		if r.RoutingReady && r.RoutingStatus && r.RoutingSubdepartmentID == subdepartmentID && strings.EqualFold(r.RoutingSKU, sku) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRouting(ctx context.Context, id uuid.UUID) (*rtModel.RoutingModel, error) {
	if r, ok := f.routings[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) RoutingOperationLines(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationLine, error) {
	var out []rtModel.RoutingOperationLine
	for _, l := range f.lines {
		if l.RoutingOperationRoutingID == routingID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OperationName < out[j].OperationName })
	return out, nil
}

func (f *fakeStore) FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	if l, ok := f.lines[id]; ok {
		cp := l.RoutingOperationModel
		return &cp, nil
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

func (f *fakeStore) CreateDeclaration(ctx context.Context, m *declModel.DeclarationModel) error {
	m.DeclarationID = uuid.New()
	for i := range m.Operators {
		m.Operators[i].DeclarationOperatorDeclarationID = m.DeclarationID
	}
	f.declarations = append(f.declarations, *m)
	return nil
}
