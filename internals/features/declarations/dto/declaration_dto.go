package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"shopfloor_backend/internals/features/declarations/repository"
	"shopfloor_backend/internals/features/declarations/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

/* =========================
   Requests
========================= */

// CreateDeclarationRequest is the direct form of the planner wizard.
type CreateDeclarationRequest struct {
	TeamUserID         string   `json:"team_user_id" validate:"required,uuid"`
	Date               string   `json:"date" validate:"required,datetime=2006-01-02"`
	ProID              string   `json:"pro_id" validate:"required,uuid"`
	RoutingID          string   `json:"routing_id" validate:"required,uuid"`
	RoutingOperationID string   `json:"routing_operation_id" validate:"required,uuid"`
	Qty                int      `json:"qty" validate:"required,min=1"`
	OperatorIDs        []string `json:"operator_ids" validate:"omitempty,dive,uuid"`
}

func (r CreateDeclarationRequest) ToInput() (service.DeclarationInput, error) {
	in := service.DeclarationInput{Qty: r.Qty, Backdate: true}
	var err error
	if in.TeamUserID, err = uuid.Parse(r.TeamUserID); err != nil {
		return in, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	if in.Date, err = dbtime.ParseDate(r.Date); err != nil {
		return in, apperr.InvalidField("date", "expected YYYY-MM-DD")
	}
	if in.ProID, err = uuid.Parse(r.ProID); err != nil {
		return in, apperr.InvalidField("pro_id", "invalid uuid")
	}
	if in.RoutingID, err = uuid.Parse(r.RoutingID); err != nil {
		return in, apperr.InvalidField("routing_id", "invalid uuid")
	}
	if in.RoutingOperationID, err = uuid.Parse(r.RoutingOperationID); err != nil {
		return in, apperr.InvalidField("routing_operation_id", "invalid uuid")
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

// ListDeclarationsQuery: GET /api/p/declarations?date=&team_user_id=
type ListDeclarationsQuery struct {
	Date       string `query:"date"`
	TeamUserID string `query:"team_user_id"`
}

func (q ListDeclarationsQuery) ToFilter() (repository.DeclarationFilter, error) {
	var f repository.DeclarationFilter
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

/* =========================
   Responses
========================= */

type DeclarationResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Date               string     `json:"date"`
	TeamUserID         uuid.UUID  `json:"team_user_id"`
	TeamUsername       string     `json:"team_username,omitempty"`
	ProID              uuid.UUID  `json:"pro_id"`
	ProName            string     `json:"pro_name,omitempty"`
	RoutingID          uuid.UUID  `json:"routing_id"`
	Routing            string     `json:"routing,omitempty"`
	RoutingOperationID *uuid.UUID `json:"routing_operation_id,omitempty"`
	OperationName      string     `json:"operation_name,omitempty"`
	Qty                int        `json:"qty"`
	SMV                *string    `json:"smv,omitempty"`
	OperatorCount      int        `json:"operator_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

func FromRows(rows []repository.DeclarationRow) []DeclarationResponse {
	out := make([]DeclarationResponse, 0, len(rows))
	for _, r := range rows {
		d := DeclarationResponse{
			ID:                 r.DeclarationID,
			Date:               r.DeclarationDate.Format("2006-01-02"),
			TeamUserID:         r.DeclarationTeamUserID,
			TeamUsername:       r.TeamUserUsername,
			ProID:              r.DeclarationProID,
			ProName:            r.ProName,
			RoutingID:          r.DeclarationRoutingID,
			Routing:            strings.TrimSpace(r.RoutingSKU + " " + r.RoutingVersion),
			RoutingOperationID: r.DeclarationRoutingOperationID,
			OperationName:      r.OperationName,
			Qty:                r.DeclarationQty,
			OperatorCount:      r.OperatorCount,
			CreatedAt:          r.DeclarationCreatedAt,
		}
		if r.DeclarationSMV != nil {
			s := r.DeclarationSMV.StringFixed(3)
			d.SMV = &s
		}
		out = append(out, d)
	}
	return out
}
