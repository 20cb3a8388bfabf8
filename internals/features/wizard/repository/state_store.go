package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopfloor_backend/internals/features/wizard/model"
	"shopfloor_backend/internals/features/wizard/service"
)

// GormStateStore keeps wizard slots in the wizard_states table.
type GormStateStore struct {
	DB *gorm.DB
}

func NewGormStateStore(db *gorm.DB) *GormStateStore { return &GormStateStore{DB: db} }

var _ service.StateStore = (*GormStateStore)(nil)

func (s *GormStateStore) Load(ctx context.Context, userID uuid.UUID, kind string) (*service.Snapshot, error) {
	var m model.WizardStateModel
	err := s.DB.WithContext(ctx).
		Where("wizard_state_user_id = ? AND wizard_state_kind = ?", userID, kind).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service.Snapshot{Step: m.WizardStateStep, Payload: []byte(m.WizardStatePayload)}, nil
}

// Save overwrites the single slot of (user, kind).
func (s *GormStateStore) Save(ctx context.Context, userID uuid.UUID, kind string, snap service.Snapshot) error {
	payload := snap.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	row := model.WizardStateModel{
		WizardStateUserID:    userID,
		WizardStateKind:      kind,
		WizardStateStep:      snap.Step,
		WizardStatePayload:   datatypes.JSON(payload),
		WizardStateUpdatedAt: time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wizard_state_user_id"}, {Name: "wizard_state_kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"wizard_state_step", "wizard_state_payload", "wizard_state_updated_at"}),
		}).
		Create(&row).Error
}

func (s *GormStateStore) Clear(ctx context.Context, userID uuid.UUID, kind string) error {
	return s.DB.WithContext(ctx).
		Where("wizard_state_user_id = ? AND wizard_state_kind = ?", userID, kind).
		Delete(&model.WizardStateModel{}).Error
}
