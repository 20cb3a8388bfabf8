package seeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	breakModel "shopfloor_backend/internals/features/breaks/model"
	dtModel "shopfloor_backend/internals/features/downtimes/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	mdService "shopfloor_backend/internals/features/masterdata/service"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	authRepo "shopfloor_backend/internals/features/users/auth/repository"
	authService "shopfloor_backend/internals/features/users/auth/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// Report counts rows written per section.
type Report struct {
	Subdepartments int `json:"subdepartments"`
	TeamUsers      int `json:"team_users"`
	Operators      int `json:"operators"`
	Operations     int `json:"operations"`
	Breaks         int `json:"breaks"`
	Downtimes      int `json:"downtimes"`
	Pros           int `json:"pros"`
}

func (r Report) String() string {
	return fmt.Sprintf("subdepartments=%d team_users=%d operators=%d operations=%d breaks=%d downtimes=%d pros=%d",
		r.Subdepartments, r.TeamUsers, r.Operators, r.Operations, r.Breaks, r.Downtimes, r.Pros)
}

// Run upserts the whole document in one transaction; rerunning the same file is a no-op.
func Run(ctx context.Context, db *gorm.DB, doc *Document, logger zerolog.Logger) (*Report, error) {
	rep := &Report{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := &seeder{tx: tx, log: logger, subs: map[string]uuid.UUID{}}
		steps := []func(context.Context, *Document, *Report) error{
			s.subdepartments, s.teamUsers, s.operators, s.operations, s.breaks, s.downtimes, s.pros,
		}
		for _, step := range steps {
			if err := step(ctx, doc, rep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("report", rep.String()).Msg("seed finished")
	return rep, nil
}

type seeder struct {
	tx   *gorm.DB
	log  zerolog.Logger
	subs map[string]uuid.UUID
}

func (s *seeder) subdepartments(ctx context.Context, doc *Document, rep *Report) error {
	for _, name := range doc.Subdepartments {
		name = strings.TrimSpace(name)
		m := mdModel.SubdepartmentModel{SubdepartmentName: name}
		if err := s.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subdepartment_name"}},
			DoNothing: true,
		}).Create(&m).Error; err != nil {
			return fmt.Errorf("subdepartment %s: %w", name, err)
		}
		var got mdModel.SubdepartmentModel
		if err := s.tx.Where("subdepartment_name = ?", name).First(&got).Error; err != nil {
			return fmt.Errorf("subdepartment %s: %w", name, err)
		}
		s.subs[name] = got.SubdepartmentID
		rep.Subdepartments++
	}
	return nil
}

func (s *seeder) sub(name string) *uuid.UUID {
	if name == "" {
		return nil
	}
	id := s.subs[name]
	return &id
}

func (s *seeder) teamUsers(ctx context.Context, doc *Document, rep *Report) error {
	repo := authRepo.NewAuthRepository(s.tx)
	for _, u := range doc.TeamUsers {
		hash, err := authService.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("team user %s: %w", u.Username, err)
		}
		m := &authModel.TeamUserModel{
			TeamUserUsername:         u.Username,
			TeamUserPasswordHash:     hash,
			TeamUserFirstName:        u.FirstName,
			TeamUserLastName:         u.LastName,
			TeamUserRole:             u.Role,
			TeamUserSubdepartmentID:  s.sub(u.Subdepartment),
			TeamUserLocation:         u.Location,
			TeamUserLoginGracePeriod: u.GracePeriod,
			TeamUserIsActive:         !u.Inactive,
		}
		if err := repo.UpsertTeamUser(ctx, m); err != nil {
			return fmt.Errorf("team user %s: %w", u.Username, err)
		}
		rep.TeamUsers++
	}
	return nil
}

func (s *seeder) syncService() *mdService.SyncService {
	return mdService.NewSyncService(mdRepo.NewSyncRepository(s.tx), dbtime.Default(), s.log, nil)
}

func (s *seeder) operators(ctx context.Context, doc *Document, rep *Report) error {
	if len(doc.Operators) == 0 {
		return nil
	}
	records := make([]mdService.OperatorRecord, 0, len(doc.Operators))
	for _, o := range doc.Operators {
		records = append(records, o.record())
	}
	res, err := s.syncService().SyncOperators(ctx, records)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("operators: %d rows failed", res.Failed)
	}
	rep.Operators = res.Created + res.Updated
	return nil
}

func (s *seeder) operations(ctx context.Context, doc *Document, rep *Report) error {
	for _, op := range doc.Operations {
		m := mdModel.OperationModel{
			OperationName:            strings.TrimSpace(op.Name),
			OperationSubdepartmentID: s.subs[op.Subdepartment],
			OperationDescription:     op.Description,
			OperationStatus:          true,
		}
		if err := s.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "operation_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"operation_subdepartment_id", "operation_description"}),
		}).Create(&m).Error; err != nil {
			return fmt.Errorf("operation %s: %w", op.Name, err)
		}
		rep.Operations++
	}
	return nil
}

// breaks have no natural key; the name identifies a seeded break.
func (s *seeder) breaks(ctx context.Context, doc *Document, rep *Report) error {
	for _, b := range doc.Breaks {
		start, end, err := b.window()
		if err != nil {
			return fmt.Errorf("break %s: %w", b.Name, err)
		}
		cur, err := mdRepo.First[breakModel.BreakModel](s.tx.Where("break_name = ?", b.Name))
		if err != nil {
			return err
		}
		m := breakModel.BreakModel{BreakName: b.Name, BreakTimeStart: start, BreakTimeEnd: end}
		if cur != nil {
			m.BreakID = cur.BreakID
		}
		if err := s.tx.Save(&m).Error; err != nil {
			return fmt.Errorf("break %s: %w", b.Name, err)
		}
		rep.Breaks++
	}
	return nil
}

func (s *seeder) downtimes(ctx context.Context, doc *Document, rep *Report) error {
	for _, d := range doc.Downtimes {
		value, err := d.value()
		if err != nil {
			return fmt.Errorf("downtime %s: %w", d.Name, err)
		}
		subID := s.subs[d.Subdepartment]
		cur, err := mdRepo.First[dtModel.DowntimeModel](s.tx.
			Where("downtime_name = ? AND downtime_subdepartment_id = ?", d.Name, subID))
		if err != nil {
			return err
		}
		m := dtModel.DowntimeModel{
			DowntimeName:            d.Name,
			DowntimeSubdepartmentID: subID,
			DowntimeFixedDuration:   d.FixedDuration,
			DowntimeValue:           value,
		}
		if cur != nil {
			m.DowntimeID = cur.DowntimeID
		}
		if err := s.tx.Save(&m).Error; err != nil {
			return fmt.Errorf("downtime %s: %w", d.Name, err)
		}
		rep.Downtimes++
	}
	return nil
}

// pros are created when missing, then refreshed through the PO summary sync.
func (s *seeder) pros(ctx context.Context, doc *Document, rep *Report) error {
	records := make([]mdService.ProRecord, 0, len(doc.Pros))
	for _, p := range doc.Pros {
		rec, err := p.record()
		if err != nil {
			return err
		}
		m := mdModel.ProModel{
			ProName:   strings.TrimSpace(p.ProName),
			ProSKU:    mdService.BuildSKU(p.Style, p.Color, p.Size),
			ProStatus: true,
		}
		if err := s.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pro_name"}},
			DoNothing: true,
		}).Create(&m).Error; err != nil {
			return fmt.Errorf("pro %s: %w", p.ProName, err)
		}
		var pro mdModel.ProModel
		if err := s.tx.Where("pro_name = ?", m.ProName).First(&pro).Error; err != nil {
			return fmt.Errorf("pro %s: %w", p.ProName, err)
		}
		for _, sub := range p.Subdepartments {
			link := mdModel.ProSubdepartmentModel{
				ProSubdepartmentProID:           pro.ProID,
				ProSubdepartmentSubdepartmentID: s.subs[sub],
				ProSubdepartmentActive:          true,
			}
			if err := s.tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "pro_subdepartment_pro_id"}, {Name: "pro_subdepartment_subdepartment_id"}},
				DoUpdates: clause.Assignments(map[string]any{"pro_subdepartment_active": true}),
			}).Create(&link).Error; err != nil {
				return fmt.Errorf("pro %s/%s: %w", p.ProName, sub, err)
			}
		}
		records = append(records, rec)
		rep.Pros++
	}
	if len(records) == 0 {
		return nil
	}
	res, err := s.syncService().SyncPros(ctx, records)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("pros: %d rows failed", res.Failed)
	}
	return nil
}
