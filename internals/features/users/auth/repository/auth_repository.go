package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	authModel "shopfloor_backend/internals/features/users/auth/model"
)

type AuthRepository struct {
	*mdRepo.ReferenceRepository
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{ReferenceRepository: mdRepo.NewReferenceRepository(db)}
}

// FindTeamUserByUsername matches case-insensitively.
func (r *AuthRepository) FindTeamUserByUsername(ctx context.Context, username string) (*authModel.TeamUserModel, error) {
	return mdRepo.First[authModel.TeamUserModel](r.DB.WithContext(ctx).
		Where("LOWER(team_user_username) = ?", strings.ToLower(strings.TrimSpace(username))))
}

// UpsertTeamUser is keyed by username; seeds use it to stay idempotent.
func (r *AuthRepository) UpsertTeamUser(ctx context.Context, m *authModel.TeamUserModel) error {
	existing, err := r.FindTeamUserByUsername(ctx, m.TeamUserUsername)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.DB.WithContext(ctx).Create(m).Error
	}
	m.TeamUserID = existing.TeamUserID
	m.TeamUserCreatedAt = existing.TeamUserCreatedAt
	return r.DB.WithContext(ctx).Save(m).Error
}
