package dto

import (
	"strings"

	"github.com/google/uuid"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	"shopfloor_backend/internals/features/masterdata/service"
	authModel "shopfloor_backend/internals/features/users/auth/model"
)

type SyncOperatorsRequest struct {
	Records []service.OperatorRecord `json:"records" validate:"required,min=1"`
}

type SyncProsRequest struct {
	Records []service.ProRecord `json:"records" validate:"required,min=1"`
}

type ListOperatorsQuery struct {
	Q      string `query:"q"`
	Active string `query:"active"`
}

func (q ListOperatorsQuery) ActiveOnly() bool {
	v := strings.ToLower(strings.TrimSpace(q.Active))
	return v == "1" || v == "true" || v == "yes"
}

// TeamUserResponse hides the password hash and flattens the display name.
type TeamUserResponse struct {
	TeamUserID              uuid.UUID  `json:"team_user_id"`
	TeamUserUsername        string     `json:"team_user_username"`
	TeamUserName            string     `json:"team_user_name"`
	TeamUserRole            string     `json:"team_user_role"`
	TeamUserSubdepartmentID *uuid.UUID `json:"team_user_subdepartment_id,omitempty"`
	TeamUserLocation        string     `json:"team_user_location"`
	TeamUserGracePeriod     int        `json:"team_user_login_grace_period"`
	TeamUserIsActive        bool       `json:"team_user_is_active"`
}

func FromTeamUser(m *authModel.TeamUserModel) TeamUserResponse {
	return TeamUserResponse{
		TeamUserID:              m.TeamUserID,
		TeamUserUsername:        m.TeamUserUsername,
		TeamUserName:            m.DisplayName(),
		TeamUserRole:            m.TeamUserRole,
		TeamUserSubdepartmentID: m.TeamUserSubdepartmentID,
		TeamUserLocation:        m.TeamUserLocation,
		TeamUserGracePeriod:     m.TeamUserLoginGracePeriod,
		TeamUserIsActive:        m.TeamUserIsActive,
	}
}

func FromTeamUsers(ms []authModel.TeamUserModel) []TeamUserResponse {
	out := make([]TeamUserResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromTeamUser(&ms[i]))
	}
	return out
}

type OperatorResponse struct {
	OperatorID       uuid.UUID `json:"operator_id"`
	OperatorBadgeNum string    `json:"operator_badge_num"`
	OperatorName     string    `json:"operator_name"`
	OperatorActive   bool      `json:"operator_active"`
	OperatorFunc     string    `json:"operator_func"`
}

func FromOperators(ms []mdModel.OperatorModel) []OperatorResponse {
	out := make([]OperatorResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, OperatorResponse{
			OperatorID:       m.OperatorID,
			OperatorBadgeNum: m.OperatorBadgeNum,
			OperatorName:     m.OperatorName,
			OperatorActive:   m.OperatorActive,
			OperatorFunc:     m.OperatorFunc,
		})
	}
	return out
}
