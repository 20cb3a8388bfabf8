package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

const (
	PlannerWizardKind = "planner_declaration_wip"
	TeamWizardKind    = "declaration_wip"
)

// Draft is the state of a production declaration wizard.
type Draft struct {
	TeamUserID         string   `json:"team_user_id,omitempty"`
	Date               string   `json:"date,omitempty"`
	ProID              string   `json:"pro_id,omitempty"`
	RoutingID          string   `json:"routing_id,omitempty"`
	RoutingOperationID string   `json:"routing_operation_id,omitempty"`
	Qty                int      `json:"qty,omitempty"`
	OperatorIDs        []string `json:"operator_ids,omitempty"`
	TeamDeclared       bool     `json:"team_declared,omitempty"`
}

// PlannerFlow declares for any team on any calendar day; the record is backdated to the shift start.
func PlannerFlow(s *Service) wizard.Flow[Draft] {
	steps := []wizard.Step[Draft]{s.teamUserStep(), s.dateStep()}
	return wizard.Flow[Draft]{
		Kind:    PlannerWizardKind,
		Landing: "/planner/declarations",
		Steps:   append(steps, s.productionSteps()...),
		Commit:  s.commit(true),
	}
}

// TeamFlow declares for the signed-in team on today's date.
func TeamFlow(s *Service) wizard.Flow[Draft] {
	return wizard.Flow[Draft]{
		Kind:    TeamWizardKind,
		Landing: "/team/declarations",
		Steps:   s.productionSteps(),
		Init: func(a wizard.Actor, d *Draft) {
			d.TeamUserID = a.UserID.String()
		},
		Commit: s.commit(false),
	}
}

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

// workDate is the chosen date, today when the flow has no date step.
func (s *Service) workDate(d *Draft) time.Time {
	if d.Date == "" {
		return s.zone.Today()
	}
	t, err := dbtime.ParseDate(d.Date)
	if err != nil {
		return s.zone.Today()
	}
	return t
}

// subdepartmentOf returns the draft team's subdepartment, uuid.Nil when unknown.
func (s *Service) subdepartmentOf(ctx context.Context, d *Draft) (uuid.UUID, error) {
	team, err := s.store.FindTeamUser(ctx, parseID(d.TeamUserID))
	if err != nil || team == nil || team.TeamUserSubdepartmentID == nil {
		return uuid.Nil, err
	}
	return *team.TeamUserSubdepartmentID, nil
}

func (s *Service) teamUserStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name: "team_user",
		Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
			users, err := s.store.PlannableTeamUsers(ctx)
			if err != nil {
				return nil, err
			}
			opts := make([]wizard.Option, 0, len(users))
			for _, u := range users {
				opts = append(opts, wizard.Option{Value: u.TeamUserID.String(), Label: u.TeamUserUsername})
			}
			return opts, nil
		},
		Selected: wizard.Single(func(d *Draft) string { return d.TeamUserID }),
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			if d.TeamUserID != v[0] {
				*d = Draft{}
			}
			d.TeamUserID = v[0]
			return nil
		},
	}
}

func (s *Service) dateStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name:     "date",
		Input:    wizard.InputDate,
		Selected: wizard.Single(func(d *Draft) string { return d.Date }),
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			date, err := dbtime.ParseDate(v[0])
			if err != nil {
				return apperr.InvalidField("date", "enter a date as YYYY-MM-DD")
			}
			shift, err := s.store.FindShift(ctx, parseID(d.TeamUserID), date)
			if err != nil {
				return err
			}
			if shift == nil {
				return apperr.InvalidField("date", "no shift in calendar for %s", v[0])
			}
			if d.Date != v[0] {
				d.OperatorIDs = nil
			}
			d.Date = date.Format("2006-01-02")
			return nil
		},
	}
}

func (s *Service) productionSteps() []wizard.Step[Draft] {
	return []wizard.Step[Draft]{
		{
			Name: "pro",
			Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
				sub, err := s.subdepartmentOf(ctx, d)
				if err != nil || sub == uuid.Nil {
					return nil, err
				}
				pros, err := s.store.ActivePros(ctx, sub)
				if err != nil {
					return nil, err
				}
				opts := make([]wizard.Option, 0, len(pros))
				for _, p := range pros {
					opts = append(opts, wizard.Option{Value: p.ProID.String(), Label: p.ProName + " | " + p.ProSKU})
				}
				return opts, nil
			},
			Selected: wizard.Single(func(d *Draft) string { return d.ProID }),
			Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
				if d.ProID != v[0] {
					d.RoutingID, d.RoutingOperationID, d.TeamDeclared = "", "", false
				}
				d.ProID = v[0]
				return nil
			},
		},
		{
			Name: "routing",
			Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
				sub, err := s.subdepartmentOf(ctx, d)
				if err != nil || sub == uuid.Nil {
					return nil, err
				}
				pro, err := s.store.FindPro(ctx, parseID(d.ProID))
				if err != nil || pro == nil {
					return nil, err
				}
				routings, err := s.store.ReadyRoutings(ctx, pro.ProSKU, sub)
				if err != nil {
					return nil, err
				}
				opts := make([]wizard.Option, 0, len(routings))
				for _, r := range routings {
					opts = append(opts, wizard.Option{
						Value: r.RoutingID.String(),
						Label: fmt.Sprintf("%s %s (%s)", r.RoutingSKU, r.RoutingVersion, r.RoutingDeclarationType),
					})
				}
				return opts, nil
			},
			Selected: wizard.Single(func(d *Draft) string { return d.RoutingID }),
			Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
				r, err := s.store.FindRouting(ctx, parseID(v[0]))
				if err != nil {
					return err
				}
				if r == nil {
					return apperr.InvalidField("routing", "routing not found")
				}
				if d.RoutingID != v[0] {
					d.RoutingOperationID = ""
				}
				d.RoutingID = v[0]
				d.TeamDeclared = r.RoutingDeclarationType.IsTeam()
				if d.TeamDeclared {
					d.OperatorIDs = nil
				}
				return nil
			},
		},
		{
			Name: "routing_operation",
			Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
				lines, err := s.store.RoutingOperationLines(ctx, parseID(d.RoutingID))
				if err != nil {
					return nil, err
				}
				opts := make([]wizard.Option, 0, len(lines))
				for _, l := range lines {
					label := l.Label()
					if l.RoutingOperationSMV != nil {
						label += " | SMV " + l.RoutingOperationSMV.StringFixed(3)
					}
					opts = append(opts, wizard.Option{Value: l.RoutingOperationID.String(), Label: label})
				}
				return opts, nil
			},
			Selected: wizard.Single(func(d *Draft) string { return d.RoutingOperationID }),
			Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
				d.RoutingOperationID = v[0]
				return nil
			},
		},
		{
			Name:  "qty",
			Input: wizard.InputNumber,
			Selected: func(d *Draft) []string {
				if d.Qty == 0 {
					return nil
				}
				return []string{strconv.Itoa(d.Qty)}
			},
			Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
				n, err := strconv.Atoi(v[0])
				if err != nil || n < 1 {
					return apperr.InvalidField("qty", "quantity must be a whole number of at least 1")
				}
				d.Qty = n
				return nil
			},
		},
		{
			Name:  "operators",
			Multi: true,
			Skip:  func(d *Draft) bool { return d.TeamDeclared },
			Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
				ops, err := s.store.OperatorsInSessions(ctx, parseID(d.TeamUserID), s.workDate(d), DeclarableStatuses...)
				if err != nil {
					return nil, err
				}
				opts := make([]wizard.Option, 0, len(ops))
				for _, op := range ops {
					opts = append(opts, wizard.Option{Value: op.OperatorID.String(), Label: op.OperatorBadgeNum + " " + op.OperatorName})
				}
				return opts, nil
			},
			Selected: func(d *Draft) []string { return d.OperatorIDs },
			Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
				d.OperatorIDs = v
				return nil
			},
		},
	}
}

func (s *Service) commit(backdate bool) func(ctx context.Context, a wizard.Actor, d *Draft) (any, error) {
	return func(ctx context.Context, a wizard.Actor, d *Draft) (any, error) {
		// the routing may have switched declaration type since its step was answered
		r, err := s.store.FindRouting(ctx, parseID(d.RoutingID))
		if err != nil {
			return nil, err
		}
		if r != nil {
			d.TeamDeclared = r.RoutingDeclarationType.IsTeam()
		}
		in := DeclarationInput{
			TeamUserID:         parseID(d.TeamUserID),
			Date:               s.workDate(d),
			ProID:              parseID(d.ProID),
			RoutingID:          parseID(d.RoutingID),
			RoutingOperationID: parseID(d.RoutingOperationID),
			Qty:                d.Qty,
			Backdate:           backdate,
		}
		if !d.TeamDeclared {
			ids, err := wizard.ParseIDs(d.OperatorIDs)
			if err != nil {
				return nil, apperr.InvalidField("operators", "select at least one operator")
			}
			in.OperatorIDs = ids
		}
		return s.Create(ctx, in)
	}
}
