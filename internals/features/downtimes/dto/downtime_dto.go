package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopfloor_backend/internals/features/downtimes/repository"
	"shopfloor_backend/internals/features/downtimes/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

type DowntimeTypeRequest struct {
	DowntimeName            string           `json:"downtime_name" validate:"required,max=100"`
	DowntimeSubdepartmentID string           `json:"downtime_subdepartment_id" validate:"required,uuid"`
	DowntimeFixedDuration   bool             `json:"downtime_fixed_duration"`
	DowntimeValue           *decimal.Decimal `json:"downtime_value"`
}

func (r DowntimeTypeRequest) ToInput() (service.DowntimeTypeInput, error) {
	sub, err := uuid.Parse(r.DowntimeSubdepartmentID)
	if err != nil {
		return service.DowntimeTypeInput{}, apperr.InvalidField("downtime_subdepartment_id", "invalid uuid")
	}
	return service.DowntimeTypeInput{
		Name:            r.DowntimeName,
		SubdepartmentID: sub,
		FixedDuration:   r.DowntimeFixedDuration,
		Value:           r.DowntimeValue,
	}, nil
}

// DeclareDowntimeRequest is the direct form of the planner downtime wizard.
type DeclareDowntimeRequest struct {
	TeamUserID    string           `json:"team_user_id" validate:"required,uuid"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	SessionIDs    []string         `json:"session_ids" validate:"required,min=1,dive,uuid"`
	DowntimeID    string           `json:"downtime_id" validate:"required,uuid"`
	DowntimeValue *decimal.Decimal `json:"downtime_value"`
	Repetition    int              `json:"repetition" validate:"omitempty,min=1"`
}

func (r DeclareDowntimeRequest) ToInput() (service.DeclareInput, error) {
	in := service.DeclareInput{Value: r.DowntimeValue, Repetition: r.Repetition}
	var err error
	if in.TeamUserID, err = uuid.Parse(r.TeamUserID); err != nil {
		return in, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	if in.Date, err = dbtime.ParseDate(r.Date); err != nil {
		return in, apperr.InvalidField("date", "expected YYYY-MM-DD")
	}
	if in.DowntimeID, err = uuid.Parse(r.DowntimeID); err != nil {
		return in, apperr.InvalidField("downtime_id", "invalid uuid")
	}
	for _, s := range r.SessionIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return in, apperr.InvalidField("session_ids", "invalid uuid %s", s)
		}
		in.SessionIDs = append(in.SessionIDs, id)
	}
	return in, nil
}

// UpdateDowntimeDeclarationRequest: PATCH /api/p/downtime-declarations/:id
type UpdateDowntimeDeclarationRequest struct {
	DowntimeValue *decimal.Decimal `json:"downtime_value"`
	Repetition    *int             `json:"repetition" validate:"omitempty,min=1"`
}

// ListDowntimeDeclarationsQuery: GET /api/p/downtime-declarations?date=&team_user_id=
type ListDowntimeDeclarationsQuery struct {
	Date       string `query:"date"`
	TeamUserID string `query:"team_user_id"`
}

func (q ListDowntimeDeclarationsQuery) ToFilter() (repository.DowntimeDeclarationFilter, error) {
	var f repository.DowntimeDeclarationFilter
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
