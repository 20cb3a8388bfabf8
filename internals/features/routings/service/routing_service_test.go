package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	rtModel "shopfloor_backend/internals/features/routings/model"
	"shopfloor_backend/internals/helpers/apperr"
)

func TestComputeReady(t *testing.T) {
	line := func(final bool) rtModel.RoutingOperationModel {
		return rtModel.RoutingOperationModel{RoutingOperationFinal: final}
	}
	tests := []struct {
		name  string
		lines []rtModel.RoutingOperationModel
		want  bool
	}{
		{name: "no lines", want: false},
		{name: "no final", lines: []rtModel.RoutingOperationModel{line(false), line(false)}, want: false},
		{name: "one final", lines: []rtModel.RoutingOperationModel{line(false), line(true)}, want: true},
		{name: "only final", lines: []rtModel.RoutingOperationModel{line(true)}, want: true},
		{name: "two finals", lines: []rtModel.RoutingOperationModel{line(true), line(true)}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeReady(tt.lines); got != tt.want {
				t.Errorf("ComputeReady = %v, want %v", got, tt.want)
			}
		})
	}
}

func smv(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestLineMutationsRecomputeReadiness(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	sub := f.addSub()
	r := f.addRouting("SKU1", sub)
	cut := f.addOperation(sub, "cut")
	sew := f.addOperation(sub, "sew")
	pack := f.addOperation(sub, "pack")
	svc := NewService(f, zerolog.Nop())

	res, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: cut, SMV: smv("1.250")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Ready || f.routings[r].RoutingReady {
		t.Fatal("a routing without a final line is not ready")
	}

	res, err = svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: pack, SMV: smv("0.5"), Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ready || !f.routings[r].RoutingReady {
		t.Fatal("one final line makes the routing ready")
	}
	packLine := res.Line.RoutingOperationID

	res, err = svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: sew, SMV: smv("2"), Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Ready || f.routings[r].RoutingReady {
		t.Fatal("a second final line flips ready to false")
	}

	final := false
	if _, err := svc.UpdateLine(ctx, res.Line.RoutingOperationID, LinePatch{Final: &final}); err != nil {
		t.Fatal(err)
	}
	if !f.routings[r].RoutingReady {
		t.Fatal("back to one final line")
	}

	for id := range f.lines {
		if _, err := svc.DeleteLine(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	if f.routings[r].RoutingReady {
		t.Fatal("removing every line leaves the routing not ready")
	}
	if _, err := svc.DeleteLine(ctx, packLine); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("deleting twice: %v", err)
	}
}

func TestCreateLineRules(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	sub, other := f.addSub(), f.addSub()
	r := f.addRouting("SKU1", sub)
	cut := f.addOperation(sub, "cut")
	foreign := f.addOperation(other, "weld")
	svc := NewService(f, zerolog.Nop())

	if _, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: cut}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("missing SMV: %v", err)
	}
	if _, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: foreign, SMV: smv("1")}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("foreign subdepartment: %v", err)
	}
	if _, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: cut, SMV: smv("-1")}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("negative SMV: %v", err)
	}
	if _, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: cut, SMV: smv("1")}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateLine(ctx, LineInput{RoutingID: r, OperationID: cut, SMV: smv("1")}); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("duplicate operation: %v", err)
	}
	if len(f.lines) != 1 {
		t.Errorf("lines = %d, want 1", len(f.lines))
	}
}

func TestCreateLineRollsBackWhenRecomputeFails(t *testing.T) {
	f := newFakeStore()
	sub := f.addSub()
	r := f.addRouting("SKU1", sub)
	cut := f.addOperation(sub, "cut")
	f.failSet = true

	if _, err := NewService(f, zerolog.Nop()).CreateLine(context.Background(), LineInput{RoutingID: r, OperationID: cut, SMV: smv("1"), Final: true}); err == nil {
		t.Fatal("expected error")
	}
	if len(f.lines) != 0 {
		t.Error("line must not survive a failed readiness update")
	}
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	sub := f.addSub()
	src := f.addRouting("SRC", sub)
	svc := NewService(f, zerolog.Nop())

	var ids []uuid.UUID
	for i, name := range []string{"cut", "sew", "pack"} {
		res, err := svc.CreateLine(ctx, LineInput{RoutingID: src, OperationID: f.addOperation(sub, name), SMV: smv("1"), Final: i == 2})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, res.Line.RoutingOperationID)
	}

	res, err := svc.Copy(ctx, CopyInput{TargetSKU: " NEW ", SourceRoutingID: src, LineIDs: ids[:2]})
	if err != nil {
		t.Fatal(err)
	}
	if !res.RoutingCreated || res.Created != 2 || res.Skipped != 0 || res.Ready {
		t.Fatalf("first copy = %+v", res)
	}
	target := res.Routing
	if target.RoutingSKU != "NEW" || target.RoutingVersion != "v1" || target.RoutingSubdepartmentID != sub {
		t.Errorf("target = %+v", target)
	}

	res, err = svc.Copy(ctx, CopyInput{TargetSKU: "NEW", SourceRoutingID: src, LineIDs: append(ids, uuid.New())})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoutingCreated || res.Created != 1 || res.Skipped != 2 || !res.Ready {
		t.Fatalf("second copy = %+v", res)
	}
	if res.Routing.RoutingID != target.RoutingID || !f.routings[target.RoutingID].RoutingReady {
		t.Error("second copy must reuse the target and mark it ready")
	}

	if _, err := svc.Copy(ctx, CopyInput{TargetSKU: "NEW", SourceRoutingID: src}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("no lines selected: %v", err)
	}
}

func TestCreateRouting(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	sub := f.addSub()
	svc := NewService(f, zerolog.Nop())

	m, err := svc.CreateRouting(ctx, RoutingInput{SKU: "A1", SubdepartmentID: sub, Version: "1", DeclarationType: "TEAM", Status: true})
	if err != nil {
		t.Fatal(err)
	}
	if m.RoutingReady || m.RoutingDeclarationType != rtModel.DeclarationTeam {
		t.Errorf("routing = %+v", m)
	}
	if _, err := svc.CreateRouting(ctx, RoutingInput{SKU: "A1", SubdepartmentID: sub, Version: "1"}); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("duplicate: %v", err)
	}
	if _, err := svc.CreateRouting(ctx, RoutingInput{SKU: "A2", SubdepartmentID: uuid.New(), Version: "1"}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("unknown subdepartment: %v", err)
	}
	if _, err := svc.CreateRouting(ctx, RoutingInput{SKU: "A3", SubdepartmentID: sub, Version: "1", DeclarationType: "crew"}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("bad declaration type: %v", err)
	}
}
