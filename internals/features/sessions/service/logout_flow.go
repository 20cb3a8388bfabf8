package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

const LogoutWizardKind = "logout_wip"

// TeamDirectory lists the team accounts a planner may act for.
type TeamDirectory interface {
	PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error)
}

type LogoutDraft struct {
	TeamUserID string   `json:"team_user_id"`
	SessionIDs []string `json:"session_ids"`
	LogoffTime string   `json:"logoff_time"`
}

// LogoutFlow is the planner bulk logout: team, then today's open sessions of that team,
// then the team logoff time.
func LogoutFlow(e *Engine, teams TeamDirectory) wizard.Flow[LogoutDraft] {
	return wizard.Flow[LogoutDraft]{
		Kind:    LogoutWizardKind,
		Landing: "/planner/operator-sessions",
		Steps: []wizard.Step[LogoutDraft]{
			{
				Name: "team_user",
				Options: func(ctx context.Context, a wizard.Actor, d *LogoutDraft) ([]wizard.Option, error) {
					users, err := teams.PlannableTeamUsers(ctx)
					if err != nil {
						return nil, err
					}
					opts := make([]wizard.Option, 0, len(users))
					for _, u := range users {
						opts = append(opts, wizard.Option{Value: u.TeamUserID.String(), Label: u.TeamUserUsername})
					}
					return opts, nil
				},
				Selected: wizard.Single(func(d *LogoutDraft) string { return d.TeamUserID }),
				Apply: func(ctx context.Context, a wizard.Actor, d *LogoutDraft, v []string) error {
					if d.TeamUserID != v[0] {
						d.SessionIDs, d.LogoffTime = nil, ""
					}
					d.TeamUserID = v[0]
					return nil
				},
			},
			{
				Name:  "operators",
				Multi: true,
				Options: func(ctx context.Context, a wizard.Actor, d *LogoutDraft) ([]wizard.Option, error) {
					team, err := uuid.Parse(d.TeamUserID)
					if err != nil {
						return nil, nil
					}
					return e.openSessionOptions(ctx, team)
				},
				Selected: func(d *LogoutDraft) []string { return d.SessionIDs },
				Apply: func(ctx context.Context, a wizard.Actor, d *LogoutDraft, v []string) error {
					d.SessionIDs = v
					return nil
				},
			},
			{
				Name:  "logoff_time",
				Input: wizard.InputTime,
				Describe: func(ctx context.Context, a wizard.Actor, d *LogoutDraft) (map[string]any, error) {
					team, err := uuid.Parse(d.TeamUserID)
					if err != nil {
						return nil, nil
					}
					shift, err := e.store.FindShift(ctx, team, e.zone.Today())
					if err != nil || shift == nil {
						return nil, err
					}
					return map[string]any{
						"shift_start": shift.ShiftEntryStart.String(),
						"shift_end":   shift.ShiftEntryEnd.String(),
					}, nil
				},
				Selected: wizard.Single(func(d *LogoutDraft) string { return d.LogoffTime }),
				Apply: func(ctx context.Context, a wizard.Actor, d *LogoutDraft, v []string) error {
					at, err := dbtime.Parse(v[0])
					if err != nil {
						return apperr.InvalidField("logoff_time", "enter a time as HH:MM")
					}
					d.LogoffTime = at.Format("15:04:05")
					return nil
				},
			},
		},
		Commit: func(ctx context.Context, a wizard.Actor, d *LogoutDraft) (any, error) {
			team, err := uuid.Parse(d.TeamUserID)
			if err != nil {
				return nil, wizard.Missing("team user")
			}
			u, err := e.store.FindTeamUser(ctx, team)
			if err != nil {
				return nil, err
			}
			if u == nil || !u.TeamUserIsActive {
				return nil, wizard.Missing("team user")
			}
			ids, err := wizard.ParseIDs(d.SessionIDs)
			if err != nil {
				return nil, apperr.InvalidField("operators", "select at least one operator")
			}
			at, err := dbtime.Parse(d.LogoffTime)
			if err != nil {
				return nil, apperr.InvalidField("logoff_time", "enter a time as HH:MM")
			}
			closed, skipped, err := e.CloseSelected(ctx, team, ids, at)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"team_user": u.TeamUserUsername,
				"closed":    closed,
				"skipped":   skipped,
				"message":   fmt.Sprintf("%d operator(s) logged out at %s", closed, at),
			}, nil
		},
	}
}

// openSessionOptions lists today's ACTIVE sessions of the team that have no logoff yet.
func (e *Engine) openSessionOptions(ctx context.Context, teamUserID uuid.UUID) ([]wizard.Option, error) {
	sessions, err := e.store.TeamSessions(ctx, teamUserID, e.zone.Today(), sessModel.StatusActive)
	if err != nil {
		return nil, err
	}
	labels, err := e.store.OperatorLabels(ctx, operatorIDs(sessions))
	if err != nil {
		return nil, err
	}
	opts := make([]wizard.Option, 0, len(sessions))
	for _, s := range sessions {
		if s.OperatorSessionLogoffTeamTime != nil {
			continue
		}
		label := labels[s.OperatorSessionOperatorID]
		opts = append(opts, wizard.Option{
			Value: s.OperatorSessionID.String(),
			Label: fmt.Sprintf("%s (in %s)", label, s.OperatorSessionLoginTeamTime),
		})
	}
	return opts, nil
}
