package dto

import (
	"time"

	"github.com/google/uuid"

	authModel "shopfloor_backend/internals/features/users/auth/model"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type TeamUserResponse struct {
	TeamUserID      uuid.UUID  `json:"team_user_id"`
	Username        string     `json:"username"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	SubdepartmentID *uuid.UUID `json:"subdepartment_id,omitempty"`
	Location        string     `json:"team_location,omitempty"`
	GracePeriod     int        `json:"login_grace_period"`
}

func FromTeamUser(m *authModel.TeamUserModel) TeamUserResponse {
	return TeamUserResponse{
		TeamUserID:      m.TeamUserID,
		Username:        m.TeamUserUsername,
		Name:            m.DisplayName(),
		Role:            m.TeamUserRole,
		SubdepartmentID: m.TeamUserSubdepartmentID,
		Location:        m.TeamUserLocation,
		GracePeriod:     m.TeamUserLoginGracePeriod,
	}
}

type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Role        string           `json:"role"`
	TeamUser    TeamUserResponse `json:"team_user"`
}
