package dto

import (
	"strings"

	"github.com/google/uuid"

	"shopfloor_backend/internals/features/breaks/repository"
	"shopfloor_backend/internals/features/breaks/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

type BreakTypeRequest struct {
	BreakName      string `json:"break_name" validate:"required,max=50"`
	BreakTimeStart string `json:"break_time_start" validate:"required"`
	BreakTimeEnd   string `json:"break_time_end" validate:"required"`
}

func (r BreakTypeRequest) ToInput() (service.BreakTypeInput, error) {
	in := service.BreakTypeInput{Name: r.BreakName}
	var err error
	if in.Start, err = dbtime.Parse(r.BreakTimeStart); err != nil {
		return in, apperr.InvalidField("break_time_start", "expected HH:mm")
	}
	if in.End, err = dbtime.Parse(r.BreakTimeEnd); err != nil {
		return in, apperr.InvalidField("break_time_end", "expected HH:mm")
	}
	return in, nil
}

// AssignBreaksRequest is the direct form of the planner break wizard.
type AssignBreaksRequest struct {
	TeamUserID  string   `json:"team_user_id" validate:"required,uuid"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	BreakID     string   `json:"break_id" validate:"required,uuid"`
	OperatorIDs []string `json:"operator_ids" validate:"required,min=1,dive,uuid"`
}

func (r AssignBreaksRequest) ToInput() (service.AssignInput, error) {
	in := service.AssignInput{Statuses: service.PlannerStatuses}
	var err error
	if in.TeamUserID, err = uuid.Parse(r.TeamUserID); err != nil {
		return in, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	if in.Date, err = dbtime.ParseDate(r.Date); err != nil {
		return in, apperr.InvalidField("date", "expected YYYY-MM-DD")
	}
	if in.BreakID, err = uuid.Parse(r.BreakID); err != nil {
		return in, apperr.InvalidField("break_id", "invalid uuid")
	}
	for _, s := range r.OperatorIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return in, apperr.InvalidField("operator_ids", "invalid uuid %s", s)
		}
		in.OperatorIDs = append(in.OperatorIDs, id)
	}
	return in, nil
}

// ListOperatorBreaksQuery: GET /api/p/operator-breaks?date=&team_user_id=
type ListOperatorBreaksQuery struct {
	Date       string `query:"date"`
	TeamUserID string `query:"team_user_id"`
}

func (q ListOperatorBreaksQuery) ToFilter() (repository.OperatorBreakFilter, error) {
	var f repository.OperatorBreakFilter
	if s := strings.TrimSpace(q.Date); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return f, apperr.InvalidField("date", "expected YYYY-MM-DD")
		}
		f.Date = &d
	}
	if s := strings.TrimSpace(q.TeamUserID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, apperr.InvalidField("team_user_id", "invalid uuid")
		}
		f.TeamUserID = &id
	}
	return f, nil
}
