package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
	"shopfloor_backend/internals/helpers/apperr"
)

// Store persists routings and their operation lines. Finders return (nil, nil) when missing.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	FindRouting(ctx context.Context, id uuid.UUID, forUpdate bool) (*rtModel.RoutingModel, error)
	FindRoutingByKey(ctx context.Context, sku string, subdepartmentID uuid.UUID, version string) (*rtModel.RoutingModel, error)
	CreateRouting(ctx context.Context, m *rtModel.RoutingModel) error
	SaveRouting(ctx context.Context, m *rtModel.RoutingModel) error
	SetReady(ctx context.Context, routingID uuid.UUID, ready bool) error

	FindSubdepartment(ctx context.Context, id uuid.UUID) (*mdModel.SubdepartmentModel, error)
	FindOperation(ctx context.Context, id uuid.UUID) (*mdModel.OperationModel, error)

	FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error)
	FindRoutingOperationByPair(ctx context.Context, routingID, operationID uuid.UUID) (*rtModel.RoutingOperationModel, error)
	RoutingOperations(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationModel, error)
	CreateRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error
	SaveRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error
	DeleteRoutingOperation(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, log: logger.With().Str("component", "routings").Logger()}
}

/* ===================== Routings ===================== */

type RoutingInput struct {
	SKU                string
	SubdepartmentID    uuid.UUID
	Version            string
	VersionDescription string
	DeclarationType    rtModel.DeclarationType
	Status             bool
}

func normalizeDeclarationType(t rtModel.DeclarationType) (rtModel.DeclarationType, error) {
	switch {
	case strings.TrimSpace(string(t)) == "":
		return rtModel.DeclarationOperator, nil
	case t.IsTeam():
		return rtModel.DeclarationTeam, nil
	case strings.EqualFold(strings.TrimSpace(string(t)), string(rtModel.DeclarationOperator)):
		return rtModel.DeclarationOperator, nil
	}
	return "", apperr.InvalidField("routing_declaration_type", "must be Operator or Team")
}

// CreateRouting adds a routing without lines, so it starts not ready.
func (s *Service) CreateRouting(ctx context.Context, in RoutingInput) (*rtModel.RoutingModel, error) {
	dt, err := normalizeDeclarationType(in.DeclarationType)
	if err != nil {
		return nil, err
	}
	m := &rtModel.RoutingModel{
		RoutingSKU:                strings.TrimSpace(in.SKU),
		RoutingSubdepartmentID:    in.SubdepartmentID,
		RoutingVersion:            strings.TrimSpace(in.Version),
		RoutingVersionDescription: strings.TrimSpace(in.VersionDescription),
		RoutingDeclarationType:    dt,
		RoutingStatus:             in.Status,
	}
	if m.RoutingSKU == "" {
		return nil, apperr.InvalidField("routing_sku", "SKU is required")
	}
	if m.RoutingVersion == "" {
		return nil, apperr.InvalidField("routing_version", "version is required")
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		sub, err := tx.FindSubdepartment(ctx, in.SubdepartmentID)
		if err != nil {
			return err
		}
		if sub == nil {
			return apperr.InvalidField("routing_subdepartment_id", "subdepartment not found")
		}
		dup, err := tx.FindRoutingByKey(ctx, m.RoutingSKU, m.RoutingSubdepartmentID, m.RoutingVersion)
		if err != nil {
			return err
		}
		if dup != nil {
			return apperr.Conflict("routing %s / %s already exists in this subdepartment", m.RoutingSKU, m.RoutingVersion)
		}
		return tx.CreateRouting(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RoutingPatch changes descriptive fields. Readiness is derived and cannot be patched.
type RoutingPatch struct {
	VersionDescription *string
	DeclarationType    *rtModel.DeclarationType
	Status             *bool
}

func (s *Service) UpdateRouting(ctx context.Context, id uuid.UUID, p RoutingPatch) (*rtModel.RoutingModel, error) {
	var out *rtModel.RoutingModel
	err := s.store.Transaction(ctx, func(tx Store) error {
		m, err := tx.FindRouting(ctx, id, true)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.NotFound("routing not found")
		}
		if p.VersionDescription != nil {
			m.RoutingVersionDescription = strings.TrimSpace(*p.VersionDescription)
		}
		if p.DeclarationType != nil {
			dt, err := normalizeDeclarationType(*p.DeclarationType)
			if err != nil {
				return err
			}
			m.RoutingDeclarationType = dt
		}
		if p.Status != nil {
			m.RoutingStatus = *p.Status
		}
		out = m
		return tx.SaveRouting(ctx, m)
	})
	return out, err
}

/* ===================== Operation lines ===================== */

type LineInput struct {
	RoutingID   uuid.UUID
	OperationID uuid.UUID
	Description string
	SMV         *decimal.Decimal
	SMVIta      *decimal.Decimal
	Final       bool
}

type LineResult struct {
	Line  *rtModel.RoutingOperationModel `json:"routing_operation"`
	Ready bool                           `json:"routing_ready"`
}

func checkSMV(field string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return apperr.InvalidField(field, "must not be negative")
	}
	return nil
}

// CreateLine adds an operation to an active routing. Routing and operation must share the
// subdepartment; readiness is recomputed in the same transaction.
func (s *Service) CreateLine(ctx context.Context, in LineInput) (*LineResult, error) {
	if in.SMV == nil {
		return nil, apperr.InvalidField("routing_operation_smv", "SMV is required")
	}
	if err := checkSMV("routing_operation_smv", in.SMV); err != nil {
		return nil, err
	}
	if err := checkSMV("routing_operation_smv_ita", in.SMVIta); err != nil {
		return nil, err
	}
	res := &LineResult{}
	err := s.store.Transaction(ctx, func(tx Store) error {
		routing, err := tx.FindRouting(ctx, in.RoutingID, true)
		if err != nil {
			return err
		}
		if routing == nil || !routing.RoutingStatus {
			return apperr.InvalidField("routing_operation_routing_id", "routing not found or inactive")
		}
		op, err := tx.FindOperation(ctx, in.OperationID)
		if err != nil {
			return err
		}
		if op == nil || !op.OperationStatus {
			return apperr.InvalidField("routing_operation_operation_id", "operation not found or inactive")
		}
		if op.OperationSubdepartmentID != routing.RoutingSubdepartmentID {
			return apperr.InvalidField("routing_operation_operation_id", "operation %s belongs to another subdepartment than the routing", op.OperationName)
		}
		dup, err := tx.FindRoutingOperationByPair(ctx, routing.RoutingID, op.OperationID)
		if err != nil {
			return err
		}
		if dup != nil {
			return apperr.Conflict("operation %s is already on this routing", op.OperationName)
		}

		line := &rtModel.RoutingOperationModel{
			RoutingOperationRoutingID:   routing.RoutingID,
			RoutingOperationOperationID: op.OperationID,
			RoutingOperationDescription: strings.TrimSpace(in.Description),
			RoutingOperationSMV:         in.SMV,
			RoutingOperationSMVIta:      in.SMVIta,
			RoutingOperationFinal:       in.Final,
		}
		if err := tx.CreateRoutingOperation(ctx, line); err != nil {
			return err
		}
		res.Line = line
		res.Ready, err = Recompute(ctx, tx, routing.RoutingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("routing_id", in.RoutingID.String()).Bool("ready", res.Ready).Msg("routing operation created")
	return res, nil
}

// LinePatch cannot move a line to another routing or operation.
type LinePatch struct {
	Description *string
	SMV         *decimal.Decimal
	SMVIta      *decimal.Decimal
	ClearSMVIta bool
	Final       *bool
}

func (s *Service) UpdateLine(ctx context.Context, id uuid.UUID, p LinePatch) (*LineResult, error) {
	if err := checkSMV("routing_operation_smv", p.SMV); err != nil {
		return nil, err
	}
	if err := checkSMV("routing_operation_smv_ita", p.SMVIta); err != nil {
		return nil, err
	}
	res := &LineResult{}
	err := s.store.Transaction(ctx, func(tx Store) error {
		line, err := tx.FindRoutingOperation(ctx, id)
		if err != nil {
			return err
		}
		if line == nil {
			return apperr.NotFound("routing operation not found")
		}
		if _, err := tx.FindRouting(ctx, line.RoutingOperationRoutingID, true); err != nil {
			return err
		}
		if p.Description != nil {
			line.RoutingOperationDescription = strings.TrimSpace(*p.Description)
		}
		if p.SMV != nil {
			line.RoutingOperationSMV = p.SMV
		}
		if p.SMVIta != nil {
			line.RoutingOperationSMVIta = p.SMVIta
		} else if p.ClearSMVIta {
			line.RoutingOperationSMVIta = nil
		}
		if p.Final != nil {
			line.RoutingOperationFinal = *p.Final
		}
		if err := tx.SaveRoutingOperation(ctx, line); err != nil {
			return err
		}
		res.Line = line
		res.Ready, err = Recompute(ctx, tx, line.RoutingOperationRoutingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) DeleteLine(ctx context.Context, id uuid.UUID) (bool, error) {
	var ready bool
	err := s.store.Transaction(ctx, func(tx Store) error {
		line, err := tx.FindRoutingOperation(ctx, id)
		if err != nil {
			return err
		}
		if line == nil {
			return apperr.NotFound("routing operation not found")
		}
		if _, err := tx.FindRouting(ctx, line.RoutingOperationRoutingID, true); err != nil {
			return err
		}
		if err := tx.DeleteRoutingOperation(ctx, id); err != nil {
			return err
		}
		ready, err = Recompute(ctx, tx, line.RoutingOperationRoutingID)
		return err
	})
	return ready, err
}

/* ===================== Copy ===================== */

type CopyInput struct {
	TargetSKU       string
	SourceRoutingID uuid.UUID
	LineIDs         []uuid.UUID
}

type CopyResult struct {
	Routing        *rtModel.RoutingModel `json:"routing"`
	RoutingCreated bool                  `json:"routing_created"`
	Created        int                   `json:"created"`
	Skipped        int                   `json:"skipped"`
	Ready          bool                  `json:"ready"`
}

// Copy gets or creates the routing of TargetSKU with the source's subdepartment and version,
// then gets or creates each selected line of the source on it.
func (s *Service) Copy(ctx context.Context, in CopyInput) (*CopyResult, error) {
	sku := strings.TrimSpace(in.TargetSKU)
	if sku == "" {
		return nil, apperr.InvalidField("target_sku", "please enter target SKU")
	}
	if len(in.LineIDs) == 0 {
		return nil, apperr.InvalidField("routing_operation_ids", "please select at least one operation to copy")
	}
	res := &CopyResult{}
	err := s.store.Transaction(ctx, func(tx Store) error {
		res.Created, res.Skipped, res.RoutingCreated = 0, 0, false
		src, err := tx.FindRouting(ctx, in.SourceRoutingID, false)
		if err != nil {
			return err
		}
		if src == nil {
			return apperr.NotFound("source routing not found")
		}

		target, err := tx.FindRoutingByKey(ctx, sku, src.RoutingSubdepartmentID, src.RoutingVersion)
		if err != nil {
			return err
		}
		if target == nil {
			target = &rtModel.RoutingModel{
				RoutingSKU:                sku,
				RoutingSubdepartmentID:    src.RoutingSubdepartmentID,
				RoutingVersion:            src.RoutingVersion,
				RoutingVersionDescription: src.RoutingVersionDescription,
				RoutingDeclarationType:    src.RoutingDeclarationType,
				RoutingStatus:             src.RoutingStatus,
				RoutingReady:              false,
			}
			if err := tx.CreateRouting(ctx, target); err != nil {
				return err
			}
			res.RoutingCreated = true
		}

		for _, id := range uniqueIDs(in.LineIDs) {
			line, err := tx.FindRoutingOperation(ctx, id)
			if err != nil {
				return err
			}
			if line == nil || line.RoutingOperationRoutingID != src.RoutingID {
				continue
			}
			existing, err := tx.FindRoutingOperationByPair(ctx, target.RoutingID, line.RoutingOperationOperationID)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			cp := &rtModel.RoutingOperationModel{
				RoutingOperationRoutingID:   target.RoutingID,
				RoutingOperationOperationID: line.RoutingOperationOperationID,
				RoutingOperationDescription: line.RoutingOperationDescription,
				RoutingOperationSMV:         line.RoutingOperationSMV,
				RoutingOperationSMVIta:      line.RoutingOperationSMVIta,
				RoutingOperationFinal:       line.RoutingOperationFinal,
			}
			if err := tx.CreateRoutingOperation(ctx, cp); err != nil {
				return err
			}
			res.Created++
		}

		res.Ready, err = Recompute(ctx, tx, target.RoutingID)
		if err != nil {
			return err
		}
		target.RoutingReady = res.Ready
		res.Routing = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("source_routing_id", in.SourceRoutingID.String()).
		Str("target_sku", sku).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("routing copy")
	return res, nil
}

func uniqueIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
