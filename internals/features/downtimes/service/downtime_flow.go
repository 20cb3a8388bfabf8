package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dtModel "shopfloor_backend/internals/features/downtimes/model"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

const (
	PlannerWizardKind = "planner_downtime_wip"
	TeamWizardKind    = "downtime_wip"
)

type Draft struct {
	TeamUserID string   `json:"team_user_id,omitempty"`
	Date       string   `json:"date,omitempty"`
	SessionIDs []string `json:"session_ids,omitempty"`
	DowntimeID string   `json:"downtime_id,omitempty"`
	Value      string   `json:"downtime_value,omitempty"`
	Repetition int      `json:"repetition,omitempty"`
}

func PlannerFlow(s *Service) wizard.Flow[Draft] {
	return wizard.Flow[Draft]{
		Kind:    PlannerWizardKind,
		Landing: "/planner/downtime-declarations",
		Steps: []wizard.Step[Draft]{
			s.teamUserStep(),
			s.dateStep(),
			s.sessionsStep(),
			s.downtimeStep(),
			s.durationStep(),
		},
		Commit: s.commit,
	}
}

// TeamFlow declares downtime for the team's own sessions of today.
func TeamFlow(s *Service) wizard.Flow[Draft] {
	return wizard.Flow[Draft]{
		Kind:    TeamWizardKind,
		Landing: "/team/dashboard",
		Steps: []wizard.Step[Draft]{
			s.sessionsStep(),
			s.downtimeStep(),
			s.durationStep(),
		},
		Init: func(a wizard.Actor, d *Draft) {
			d.TeamUserID = a.UserID.String()
		},
		Commit: s.commit,
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
			formatted := date.Format("2006-01-02")
			if d.Date != formatted {
				d.SessionIDs = nil
			}
			d.Date = formatted
			return nil
		},
	}
}

func (s *Service) sessionsStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name:  "sessions",
		Multi: true,
		Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
			choices, err := s.Choices(ctx, parseID(d.TeamUserID), s.workDate(d))
			if err != nil {
				return nil, err
			}
			opts := make([]wizard.Option, 0, len(choices))
			for _, c := range choices {
				opts = append(opts, wizard.Option{Value: c.SessionID.String(), Label: c.Label()})
			}
			return opts, nil
		},
		Selected: func(d *Draft) []string { return d.SessionIDs },
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			d.SessionIDs = v
			return nil
		},
	}
}

func (s *Service) downtimeStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name: "downtime",
		Options: func(ctx context.Context, a wizard.Actor, d *Draft) ([]wizard.Option, error) {
			team, err := s.store.FindTeamUser(ctx, parseID(d.TeamUserID))
			if err != nil {
				return nil, err
			}
			if team == nil || team.TeamUserSubdepartmentID == nil {
				return nil, nil
			}
			dts, err := s.store.Downtimes(ctx, team.TeamUserSubdepartmentID)
			if err != nil {
				return nil, err
			}
			opts := make([]wizard.Option, 0, len(dts))
			for _, dt := range dts {
				label := dt.DowntimeName
				if dt.DowntimeFixedDuration && dt.DowntimeValue != nil {
					label += " (" + dt.DowntimeValue.StringFixed(2) + " min)"
				}
				opts = append(opts, wizard.Option{Value: dt.DowntimeID.String(), Label: label})
			}
			return opts, nil
		},
		Selected: wizard.Single(func(d *Draft) string { return d.DowntimeID }),
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			if d.DowntimeID != v[0] {
				d.Value, d.Repetition = "", 0
			}
			d.DowntimeID = v[0]
			return nil
		},
	}
}

// durationStep takes one number: the repetition for fixed-duration types, the minutes otherwise.
func (s *Service) durationStep() wizard.Step[Draft] {
	return wizard.Step[Draft]{
		Name:  "duration",
		Input: wizard.InputDuration,
		Selected: func(d *Draft) []string {
			switch {
			case d.Value != "":
				return []string{d.Value}
			case d.Repetition > 0:
				return []string{strconv.Itoa(d.Repetition)}
			}
			return nil
		},
		Describe: func(ctx context.Context, a wizard.Actor, d *Draft) (map[string]any, error) {
			dt, err := s.store.FindDowntime(ctx, parseID(d.DowntimeID))
			if err != nil || dt == nil {
				return nil, err
			}
			hints := map[string]any{"fixed_duration": dt.DowntimeFixedDuration}
			if dt.DowntimeFixedDuration {
				hints["editable"] = "repetition"
				hints["value_locked"] = true
				if dt.DowntimeValue != nil {
					hints["downtime_value"] = dt.DowntimeValue.StringFixed(2)
				}
			} else {
				hints["editable"] = "downtime_value"
				hints["repetition_locked"] = true
				hints["repetition"] = 1
			}
			return hints, nil
		},
		Apply: func(ctx context.Context, a wizard.Actor, d *Draft, v []string) error {
			dt, err := s.store.FindDowntime(ctx, parseID(d.DowntimeID))
			if err != nil {
				return err
			}
			if dt == nil {
				return apperr.InvalidField("downtime", "downtime type no longer exists")
			}
			if dt.DowntimeFixedDuration {
				rep, err := strconv.Atoi(v[0])
				if err != nil || rep < 1 {
					return apperr.InvalidField("duration", "repetition must be a whole number of at least 1")
				}
				d.Value, d.Repetition = "", rep
				return nil
			}
			val, err := decimal.NewFromString(v[0])
			if err != nil {
				return apperr.InvalidField("duration", "enter the downtime in minutes")
			}
			if val.Round(2).LessThan(dtModel.MinimumValue) {
				return apperr.InvalidField("duration", "downtime value must be at least 0.01 minutes")
			}
			d.Value, d.Repetition = val.Round(2).StringFixed(2), 1
			return nil
		},
	}
}

func (s *Service) commit(ctx context.Context, a wizard.Actor, d *Draft) (any, error) {
	ids, err := wizard.ParseIDs(d.SessionIDs)
	if err != nil {
		return nil, apperr.InvalidField("sessions", "select at least one operator")
	}
	in := DeclareInput{
		TeamUserID: parseID(d.TeamUserID),
		Date:       s.workDate(d),
		SessionIDs: ids,
		DowntimeID: parseID(d.DowntimeID),
		Repetition: d.Repetition,
	}
	if d.Value != "" {
		v, err := decimal.NewFromString(d.Value)
		if err != nil {
			return nil, apperr.InvalidField("duration", "enter the downtime in minutes")
		}
		in.Value = &v
	}
	return s.Declare(ctx, in)
}
