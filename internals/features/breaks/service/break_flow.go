package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

const (
	PlannerWizardKind = "operator_break_wip"
	TeamWizardKind    = "break_wip"
)

type Draft struct {
	TeamUserID  string   `json:"team_user_id,omitempty"`
	Date        string   `json:"date,omitempty"`
	BreakID     string   `json:"break_id,omitempty"`
	OperatorIDs []string `json:"operator_ids,omitempty"`
}

func PlannerFlow(s *Service) wizard.Flow[Draft] {
	return wizard.Flow[Draft]{
		Kind:    PlannerWizardKind,
		Landing: "/planner/operator-breaks",
		Steps: []wizard.Step[Draft]{
			s.teamUserStep(),
			s.dateStep(),
			s.breakStep(),
			s.operatorsStep(PlannerStatuses),
		},
		Commit: s.commit(PlannerStatuses),
	}
}

func TeamFlow(s *Service) wizard.Flow[Draft] {
	return wizard.Flow[Draft]{
		Kind:    TeamWizardKind,
		Landing: "/team/operator-breaks",
		Steps: []wizard.Step[Draft]{
			s.breakStep(),
			s.operatorsStep(TeamStatuses),
		},
		Init: func(a wizard.Actor, d *Draft) {
			d.TeamUserID = a.UserID.String()
		},
		Commit: s.commit(TeamStatuses),
	}
}

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func (s *Service) workDate(d *Draft) time.Time {
	if t, err := dbtime.ParseDate(d.Date); err == nil {
		return t
	}
	return s.zone.Today()
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
				d.Date, d.OperatorIDs = "", nil
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
			formatted := date.Format("2006-01-02")
			if d.Date != formatted {
				d.OperatorIDs = nil
			}
			d.Date = formatted
			return nil
		},
	}
}

func (s *Service) breakStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name: "break",
		Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
			breaks, err := s.store.Breaks(ctx)
			if err != nil {
				return nil, err
			}
			opts := make([]wizard.Option, 0, len(breaks))
			for _, b := range breaks {
				opts = append(opts, wizard.Option{Value: b.BreakID.String(), Label: b.Label()})
			}
			return opts, nil
		},
		Selected: wizard.Single(func(d *Draft) string { return d.BreakID }),
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			d.BreakID = v[0]
			return nil
		},
	}
}

func (s *Service) operatorsStep(statuses []sessModel.SessionStatus) wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name:  "operators",
		Multi: true,
		Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
			ops, err := s.store.OperatorsInSessions(ctx, parseID(d.TeamUserID), s.workDate(d), statuses...)
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
	}
}

func (s *Service) commit(statuses []sessModel.SessionStatus) func(ctx context.Context, a wizard.Actor, d *Draft) (any, error) {
	return func(ctx context.Context, a wizard.Actor, d *Draft) (any, error) {
		ids, err := wizard.ParseIDs(d.OperatorIDs)
		if err != nil {
			return nil, apperr.InvalidField("operators", "select at least one operator")
		}
		return s.Assign(ctx, AssignInput{
			TeamUserID:  parseID(d.TeamUserID),
			Date:        s.workDate(d),
			BreakID:     parseID(d.BreakID),
			OperatorIDs: ids,
			Statuses:    statuses,
		})
	}
}
