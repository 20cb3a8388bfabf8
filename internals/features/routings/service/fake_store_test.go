package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
)

type fakeStore struct {
	routings map[uuid.UUID]rtModel.RoutingModel
	lines    map[uuid.UUID]rtModel.RoutingOperationModel
	order    []uuid.UUID
	subs     map[uuid.UUID]mdModel.SubdepartmentModel
	ops      map[uuid.UUID]mdModel.OperationModel
	failSet  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routings: map[uuid.UUID]rtModel.RoutingModel{},
		lines:    map[uuid.UUID]rtModel.RoutingOperationModel{},
		subs:     map[uuid.UUID]mdModel.SubdepartmentModel{},
		ops:      map[uuid.UUID]mdModel.OperationModel{},
	}
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	routings := make(map[uuid.UUID]rtModel.RoutingModel, len(f.routings))
	for k, v := range f.routings {
		routings[k] = v
	}
	lines := make(map[uuid.UUID]rtModel.RoutingOperationModel, len(f.lines))
	for k, v := range f.lines {
		lines[k] = v
	}
	order := append([]uuid.UUID(nil), f.order...)
	if err := fn(f); err != nil {
		f.routings, f.lines, f.order = routings, lines, order
		return err
	}
	return nil
}

func (f *fakeStore) addSub() uuid.UUID {
	id := uuid.New()
	f.subs[id] = mdModel.SubdepartmentModel{SubdepartmentID: id, SubdepartmentName: "sewing"}
	return id
}

func (f *fakeStore) addOperation(sub uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	f.ops[id] = mdModel.OperationModel{OperationID: id, OperationName: name, OperationSubdepartmentID: sub, OperationStatus: true}
	return id
}

func (f *fakeStore) addRouting(sku string, sub uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.routings[id] = rtModel.RoutingModel{
		RoutingID: id, RoutingSKU: sku, RoutingSubdepartmentID: sub, RoutingVersion: "v1",
		RoutingDeclarationType: rtModel.DeclarationOperator, RoutingStatus: true,
	}
	return id
}

func (f *fakeStore) FindRouting(ctx context.Context, id uuid.UUID, forUpdate bool) (*rtModel.RoutingModel, error) {
	if m, ok := f.routings[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) FindRoutingByKey(ctx context.Context, sku string, sub uuid.UUID, version string) (*rtModel.RoutingModel, error) {
	for _, m := range f.routings {
		if m.RoutingSKU == sku && m.RoutingSubdepartmentID == sub && m.RoutingVersion == version {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateRouting(ctx context.Context, m *rtModel.RoutingModel) error {
	m.RoutingID = uuid.New()
	f.routings[m.RoutingID] = *m
	return nil
}

func (f *fakeStore) SaveRouting(ctx context.Context, m *rtModel.RoutingModel) error {
	f.routings[m.RoutingID] = *m
	return nil
}

func (f *fakeStore) SetReady(ctx context.Context, id uuid.UUID, ready bool) error {
	if f.failSet {
		return errors.New("set ready failed")
	}
	m := f.routings[id]
	m.RoutingReady = ready
	f.routings[id] = m
	return nil
}

func (f *fakeStore) FindSubdepartment(ctx context.Context, id uuid.UUID) (*mdModel.SubdepartmentModel, error) {
	if m, ok := f.subs[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) FindOperation(ctx context.Context, id uuid.UUID) (*mdModel.OperationModel, error) {
	if m, ok := f.ops[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	if m, ok := f.lines[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) FindRoutingOperationByPair(ctx context.Context, routingID, operationID uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	for _, m := range f.lines {
		if m.RoutingOperationRoutingID == routingID && m.RoutingOperationOperationID == operationID {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RoutingOperations(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationModel, error) {
	var out []rtModel.RoutingOperationModel
	for _, id := range f.order {
		if m, ok := f.lines[id]; ok && m.RoutingOperationRoutingID == routingID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error {
	m.RoutingOperationID = uuid.New()
	f.lines[m.RoutingOperationID] = *m
	f.order = append(f.order, m.RoutingOperationID)
	return nil
}

func (f *fakeStore) SaveRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error {
	f.lines[m.RoutingOperationID] = *m
	return nil
}

func (f *fakeStore) DeleteRoutingOperation(ctx context.Context, id uuid.UUID) error {
	delete(f.lines, id)
	return nil
}
