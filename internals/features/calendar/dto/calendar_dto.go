package dto

import (
	"time"

	"github.com/google/uuid"

	calModel "shopfloor_backend/internals/features/calendar/model"
	"shopfloor_backend/internals/features/calendar/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

type BulkUpsertRequest struct {
	TeamUserID string   `json:"team_user_id" validate:"required,uuid"`
	DateFrom   string   `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo     string   `json:"date_to" validate:"required,datetime=2006-01-02"`
	Dates      []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	ShiftStart string   `json:"shift_start" validate:"required"`
	ShiftEnd   string   `json:"shift_end" validate:"required"`
}

func (r BulkUpsertRequest) ToInput() (service.BulkUpsert, error) {
	var in service.BulkUpsert
	var err error
	if in.TeamUserID, err = uuid.Parse(r.TeamUserID); err != nil {
		return in, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	if in.From, err = dbtime.ParseDate(r.DateFrom); err != nil {
		return in, apperr.InvalidField("date_from", "expected YYYY-MM-DD")
	}
	if in.To, err = dbtime.ParseDate(r.DateTo); err != nil {
		return in, apperr.InvalidField("date_to", "expected YYYY-MM-DD")
	}
	if in.Dates, err = parseDates(r.Dates); err != nil {
		return in, err
	}
	if in.Start, err = dbtime.Parse(r.ShiftStart); err != nil {
		return in, apperr.InvalidField("shift_start", "expected HH:mm")
	}
	if in.End, err = dbtime.Parse(r.ShiftEnd); err != nil {
		return in, apperr.InvalidField("shift_end", "expected HH:mm")
	}
	return in, nil
}

type BulkDeleteRequest struct {
	TeamUserID string   `json:"team_user_id" validate:"required,uuid"`
	Dates      []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
}

func (r BulkDeleteRequest) Parse() (uuid.UUID, []time.Time, error) {
	id, err := uuid.Parse(r.TeamUserID)
	if err != nil {
		return uuid.Nil, nil, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	dates, err := parseDates(r.Dates)
	return id, dates, err
}

func parseDates(in []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(in))
	for _, s := range in {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return nil, apperr.InvalidField("dates", "invalid date %q", s)
		}
		out = append(out, d)
	}
	return out, nil
}

type ShiftEntryResponse struct {
	ID         uuid.UUID `json:"id"`
	TeamUserID uuid.UUID `json:"team_user_id"`
	Date       string    `json:"date"`
	ShiftStart string    `json:"shift_start"`
	ShiftEnd   string    `json:"shift_end"`
}

func FromModel(m *calModel.ShiftEntryModel) ShiftEntryResponse {
	return ShiftEntryResponse{
		ID:         m.ShiftEntryID,
		TeamUserID: m.ShiftEntryTeamUserID,
		Date:       m.ShiftEntryDate.Format("2006-01-02"),
		ShiftStart: m.ShiftEntryStart.String(),
		ShiftEnd:   m.ShiftEntryEnd.String(),
	}
}

func FromModels(ms []calModel.ShiftEntryModel) []ShiftEntryResponse {
	out := make([]ShiftEntryResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModel(&ms[i]))
	}
	return out
}
