package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	calModel "shopfloor_backend/internals/features/calendar/model"
	declModel "shopfloor_backend/internals/features/declarations/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

// Store reads the reference data a declaration points at and writes declarations.
// Finders return (nil, nil) when missing.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error)
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)
	FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error)

	ActivePros(ctx context.Context, subdepartmentID uuid.UUID) ([]mdModel.ProModel, error)
	FindPro(ctx context.Context, id uuid.UUID) (*mdModel.ProModel, error)
	ProInSubdepartment(ctx context.Context, proID, subdepartmentID uuid.UUID) (bool, error)

	ReadyRoutings(ctx context.Context, sku string, subdepartmentID uuid.UUID) ([]rtModel.RoutingModel, error)
	FindRouting(ctx context.Context, id uuid.UUID) (*rtModel.RoutingModel, error)
	RoutingOperationLines(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationLine, error)
	FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error)

	OperatorsInSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]mdModel.OperatorModel, error)

	CreateDeclaration(ctx context.Context, m *declModel.DeclarationModel) error
}

// DeclarableStatuses are the session states that make an operator selectable on a declaration.
var DeclarableStatuses = []sessModel.SessionStatus{sessModel.StatusActive, sessModel.StatusCompleted}

type Service struct {
	store Store
	zone  dbtime.Zone
	log   zerolog.Logger
}

func NewService(store Store, zone dbtime.Zone, logger zerolog.Logger) *Service {
	return &Service{store: store, zone: zone, log: logger.With().Str("component", "declarations").Logger()}
}

func (s *Service) Zone() dbtime.Zone { return s.zone }

type DeclarationInput struct {
	TeamUserID         uuid.UUID
	Date               time.Time
	ProID              uuid.UUID
	RoutingID          uuid.UUID
	RoutingOperationID uuid.UUID
	Qty                int
	OperatorIDs        []uuid.UUID
	// Backdate stamps created/updated at work date + shift start instead of now.
	Backdate bool
}

// Create re-validates every reference of a declaration and stores it with its operator set
// in one transaction. Field names of validation errors match the wizard step names.
func (s *Service) Create(ctx context.Context, in DeclarationInput) (*declModel.DeclarationModel, error) {
	if in.Qty < 1 {
		return nil, apperr.InvalidField("qty", "quantity must be at least 1")
	}
	date := dbtime.DateOf(in.Date)
	var out *declModel.DeclarationModel
	err := s.store.Transaction(ctx, func(tx Store) error {
		team, err := tx.FindTeamUser(ctx, in.TeamUserID)
		if err != nil {
			return err
		}
		if team == nil || !team.TeamUserIsActive {
			return apperr.NotFound("team user not found")
		}
		if team.TeamUserSubdepartmentID == nil {
			return apperr.InvalidField("team_user", "team user %s has no subdepartment", team.TeamUserUsername)
		}
		subID := *team.TeamUserSubdepartmentID

		shift, err := tx.FindShift(ctx, team.TeamUserID, date)
		if err != nil {
			return err
		}
		if shift == nil {
			return apperr.InvalidField("date", "no shift in calendar for %s", date.Format("2006-01-02"))
		}

		pro, err := tx.FindPro(ctx, in.ProID)
		if err != nil {
			return err
		}
		if pro == nil {
			return apperr.NotFound("PRO not found")
		}
		linked, err := tx.ProInSubdepartment(ctx, pro.ProID, subID)
		if err != nil {
			return err
		}
		if !pro.ProStatus || !linked {
			return apperr.InvalidField("pro", "PRO %s is not open for this subdepartment", pro.ProName)
		}

		routing, err := tx.FindRouting(ctx, in.RoutingID)
		if err != nil {
			return err
		}
		if routing == nil {
			return apperr.NotFound("routing not found")
		}
		if routing.RoutingSubdepartmentID != subID {
			return apperr.InvalidField("routing", "routing subdepartment must match the team's subdepartment")
		}
		if !strings.EqualFold(strings.TrimSpace(routing.RoutingSKU), strings.TrimSpace(pro.ProSKU)) {
			return apperr.InvalidField("routing", "routing SKU %s does not match PRO SKU %s", routing.RoutingSKU, pro.ProSKU)
		}
		if !routing.RoutingReady || !routing.RoutingStatus {
			return apperr.InvalidField("routing", "routing %s %s is not ready", routing.RoutingSKU, routing.RoutingVersion)
		}

		line, err := tx.FindRoutingOperation(ctx, in.RoutingOperationID)
		if err != nil {
			return err
		}
		if line == nil {
			return apperr.NotFound("routing operation not found")
		}
		if line.RoutingOperationRoutingID != routing.RoutingID {
			return apperr.InvalidField("routing_operation", "operation does not belong to the selected routing")
		}

		var operators []declModel.DeclarationOperatorModel
		if !routing.RoutingDeclarationType.IsTeam() {
			if operators, err = checkOperators(ctx, tx, team.TeamUserID, date, in.OperatorIDs); err != nil {
				return err
			}
		}

		stamp := s.zone.Now().UTC
		if in.Backdate {
			stamp = dbtime.Combine(date, shift.ShiftEntryStart, s.zone.Loc).UTC()
		}
		lineID := line.RoutingOperationID
		m := &declModel.DeclarationModel{
			DeclarationDate:               date,
			DeclarationTeamUserID:         team.TeamUserID,
			DeclarationSubdepartmentID:    subID,
			DeclarationProID:              pro.ProID,
			DeclarationRoutingID:          routing.RoutingID,
			DeclarationRoutingOperationID: &lineID,
			DeclarationQty:                in.Qty,
			DeclarationSMV:                line.RoutingOperationSMV,
			DeclarationSMVIta:             line.RoutingOperationSMVIta,
			DeclarationCreatedAt:          stamp,
			DeclarationUpdatedAt:          stamp,
			Operators:                     operators,
		}
		if err := tx.CreateDeclaration(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("declaration_id", out.DeclarationID.String()).
		Str("team_user_id", in.TeamUserID.String()).
		Int("qty", out.DeclarationQty).
		Int("operators", len(out.Operators)).
		Msg("declaration created")
	return out, nil
}

// checkOperators requires at least one operator, each with an ACTIVE or COMPLETED session
// of the team on date.
func checkOperators(ctx context.Context, tx Store, teamUserID uuid.UUID, date time.Time, ids []uuid.UUID) ([]declModel.DeclarationOperatorModel, error) {
	if len(ids) == 0 {
		return nil, apperr.InvalidField("operators", "select at least one operator")
	}
	present, err := tx.OperatorsInSessions(ctx, teamUserID, date, DeclarableStatuses...)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(present))
	for _, op := range present {
		known[op.OperatorID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]declModel.DeclarationOperatorModel, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, apperr.InvalidField("operators", "operator %s has no session with this team on %s", id, date.Format("2006-01-02"))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, declModel.DeclarationOperatorModel{DeclarationOperatorOperatorID: id})
	}
	return out, nil
}
