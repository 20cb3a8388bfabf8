package dto

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rtModel "shopfloor_backend/internals/features/routings/model"
	"shopfloor_backend/internals/features/routings/repository"
	"shopfloor_backend/internals/features/routings/service"
	"shopfloor_backend/internals/helpers/apperr"
)

/* ===================== Routings ===================== */

type CreateRoutingRequest struct {
	RoutingSKU                string    `json:"routing_sku" validate:"required,max=50"`
	RoutingSubdepartmentID    uuid.UUID `json:"routing_subdepartment_id" validate:"required"`
	RoutingVersion            string    `json:"routing_version" validate:"required,max=20"`
	RoutingVersionDescription string    `json:"routing_version_description" validate:"max=255"`
	RoutingDeclarationType    string    `json:"routing_declaration_type" validate:"omitempty,oneof=Operator Team OPERATOR TEAM"`
	RoutingStatus             *bool     `json:"routing_status"`
}

func (r CreateRoutingRequest) ToInput() service.RoutingInput {
	status := true
	if r.RoutingStatus != nil {
		status = *r.RoutingStatus
	}
	return service.RoutingInput{
		SKU:                r.RoutingSKU,
		SubdepartmentID:    r.RoutingSubdepartmentID,
		Version:            r.RoutingVersion,
		VersionDescription: r.RoutingVersionDescription,
		DeclarationType:    rtModel.DeclarationType(r.RoutingDeclarationType),
		Status:             status,
	}
}

type PatchRoutingRequest struct {
	RoutingVersionDescription *string `json:"routing_version_description" validate:"omitempty,max=255"`
	RoutingDeclarationType    *string `json:"routing_declaration_type" validate:"omitempty,oneof=Operator Team OPERATOR TEAM"`
	RoutingStatus             *bool   `json:"routing_status"`
}

func (r PatchRoutingRequest) ToPatch() service.RoutingPatch {
	p := service.RoutingPatch{VersionDescription: r.RoutingVersionDescription, Status: r.RoutingStatus}
	if r.RoutingDeclarationType != nil {
		dt := rtModel.DeclarationType(*r.RoutingDeclarationType)
		p.DeclarationType = &dt
	}
	return p
}

type ListRoutingsQuery struct {
	SKU             string `query:"sku"`
	SubdepartmentID string `query:"subdepartment_id"`
	Ready           string `query:"ready"`
	Status          string `query:"status"`
}

func optionalBool(field, s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.InvalidField(field, "must be true or false")
	}
	return &b, nil
}

func (q ListRoutingsQuery) ToFilter() (repository.RoutingFilter, error) {
	f := repository.RoutingFilter{SKU: q.SKU}
	if s := strings.TrimSpace(q.SubdepartmentID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, apperr.InvalidField("subdepartment_id", "invalid id")
		}
		f.SubdepartmentID = &id
	}
	var err error
	if f.Ready, err = optionalBool("ready", q.Ready); err != nil {
		return f, err
	}
	if f.Status, err = optionalBool("status", q.Status); err != nil {
		return f, err
	}
	return f, nil
}

/* ===================== Operation lines ===================== */

type CreateLineRequest struct {
	RoutingID   uuid.UUID        `json:"routing_operation_routing_id" validate:"required"`
	OperationID uuid.UUID        `json:"routing_operation_operation_id" validate:"required"`
	Description string           `json:"routing_operation_description" validate:"max=255"`
	SMV         *decimal.Decimal `json:"routing_operation_smv" validate:"required"`
	SMVIta      *decimal.Decimal `json:"routing_operation_smv_ita"`
	Final       bool             `json:"routing_operation_final"`
}

func (r CreateLineRequest) ToInput() service.LineInput {
	return service.LineInput{
		RoutingID:   r.RoutingID,
		OperationID: r.OperationID,
		Description: r.Description,
		SMV:         r.SMV,
		SMVIta:      r.SMVIta,
		Final:       r.Final,
	}
}

// PatchLineRequest has no routing or operation fields; those never change.
type PatchLineRequest struct {
	Description *string          `json:"routing_operation_description" validate:"omitempty,max=255"`
	SMV         *decimal.Decimal `json:"routing_operation_smv"`
	SMVIta      *decimal.Decimal `json:"routing_operation_smv_ita"`
	ClearSMVIta bool             `json:"clear_smv_ita"`
	Final       *bool            `json:"routing_operation_final"`
}

func (r PatchLineRequest) ToPatch() service.LinePatch {
	return service.LinePatch{
		Description: r.Description,
		SMV:         r.SMV,
		SMVIta:      r.SMVIta,
		ClearSMVIta: r.ClearSMVIta,
		Final:       r.Final,
	}
}

type CopyRequest struct {
	TargetSKU           string      `json:"target_sku" validate:"required,max=50"`
	SourceRoutingID     uuid.UUID   `json:"source_routing_id" validate:"required"`
	RoutingOperationIDs []uuid.UUID `json:"routing_operation_ids" validate:"required,min=1"`
}

func (r CopyRequest) ToInput() service.CopyInput {
	return service.CopyInput{TargetSKU: r.TargetSKU, SourceRoutingID: r.SourceRoutingID, LineIDs: r.RoutingOperationIDs}
}
