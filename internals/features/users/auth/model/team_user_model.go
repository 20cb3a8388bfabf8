package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamUserModel is a supervisory account. Team accounts badge operators in;
// planner accounts run the planner-side wizards and reports.
type TeamUserModel struct {
	TeamUserID               uuid.UUID  `gorm:"column:team_user_id;type:uuid;default:gen_random_uuid();primaryKey" json:"team_user_id"`
	TeamUserUsername         string     `gorm:"column:team_user_username;type:varchar(100);not null;uniqueIndex" json:"team_user_username"`
	TeamUserPasswordHash     string     `gorm:"column:team_user_password_hash;type:varchar(100);not null" json:"-"`
	TeamUserFirstName        string     `gorm:"column:team_user_first_name;type:varchar(100)" json:"team_user_first_name"`
	TeamUserLastName         string     `gorm:"column:team_user_last_name;type:varchar(100)" json:"team_user_last_name"`
	TeamUserRole             string     `gorm:"column:team_user_role;type:varchar(20);not null;default:'team'" json:"team_user_role"`
	TeamUserSubdepartmentID  *uuid.UUID `gorm:"column:team_user_subdepartment_id;type:uuid;index" json:"team_user_subdepartment_id,omitempty"`
	TeamUserLocation         string     `gorm:"column:team_user_location;type:varchar(100)" json:"team_user_location"`
	TeamUserLoginGracePeriod int        `gorm:"column:team_user_login_grace_period;not null;default:0;check:team_user_login_grace_period >= 0" json:"team_user_login_grace_period"`
	TeamUserIsActive         bool       `gorm:"column:team_user_is_active;not null;default:true" json:"team_user_is_active"`

	TeamUserCreatedAt time.Time `gorm:"column:team_user_created_at;type:timestamptz;not null;autoCreateTime" json:"team_user_created_at"`
	TeamUserUpdatedAt time.Time `gorm:"column:team_user_updated_at;type:timestamptz;not null;autoUpdateTime" json:"team_user_updated_at"`
}

func (TeamUserModel) TableName() string { return "team_users" }

func (m *TeamUserModel) BeforeSave(tx *gorm.DB) error {
	m.TeamUserUsername = strings.TrimSpace(m.TeamUserUsername)
	m.TeamUserRole = strings.ToLower(strings.TrimSpace(m.TeamUserRole))
	if m.TeamUserLoginGracePeriod < 0 {
		m.TeamUserLoginGracePeriod = 0
	}
	return nil
}

func (m TeamUserModel) DisplayName() string {
	name := strings.TrimSpace(m.TeamUserFirstName + " " + m.TeamUserLastName)
	if name == "" {
		return m.TeamUserUsername
	}
	return name
}
