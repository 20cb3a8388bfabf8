package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	"shopfloor_backend/internals/helpers/dbtime"
	"shopfloor_backend/internals/helpers/joblog"
)

type memSync struct {
	operators map[string]*mdModel.OperatorModel
	pros      map[string]*mdModel.ProModel
	failOn    string
}

func newMemSync() *memSync {
	return &memSync{operators: map[string]*mdModel.OperatorModel{}, pros: map[string]*mdModel.ProModel{}}
}

func (m *memSync) FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error) {
	if o, ok := m.operators[badge]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *memSync) UpsertOperator(ctx context.Context, o *mdModel.OperatorModel) error {
	if o.OperatorBadgeNum == m.failOn {
		return errors.New("boom")
	}
	if o.OperatorID == uuid.Nil {
		o.OperatorID = uuid.New()
	}
	cp := *o
	m.operators[o.OperatorBadgeNum] = &cp
	return nil
}

func (m *memSync) FindProByName(ctx context.Context, name string) (*mdModel.ProModel, error) {
	if p, ok := m.pros[name]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memSync) SavePro(ctx context.Context, p *mdModel.ProModel) error {
	if p.ProName == m.failOn {
		return errors.New(strings.Repeat("x", 400))
	}
	cp := *p
	m.pros[p.ProName] = &cp
	return nil
}

func syncService(store SyncStore, jl *joblog.Writer) *SyncService {
	at := time.Date(2024, 5, 14, 6, 0, 0, 0, time.UTC)
	return NewSyncService(store, dbtime.Zone{Clock: dbtime.FixedClock{At: at}, Loc: time.UTC}, zerolog.Nop(), jl)
}

func TestBuildSKU(t *testing.T) {
	if got := BuildSKU("ABC", "01", "M"); got != "ABC      01  M" {
		t.Errorf("BuildSKU = %q", got)
	}
	if got := BuildSKU("STYLE12345", "COLOR", "XL"); got != "STYLE1234COLOXL" {
		t.Errorf("BuildSKU truncation = %q", got)
	}
}

func TestSyncOperators(t *testing.T) {
	m := newMemSync()
	existing := uuid.New()
	m.operators["R100"] = &mdModel.OperatorModel{OperatorID: existing, OperatorBadgeNum: "R100", OperatorName: "Old"}
	m.failOn = "Z300"

	rep, err := syncService(m, nil).SyncOperators(context.Background(), []OperatorRecord{
		{BadgeNum: " r100 ", Name: " Ana ", Active: true, PinCode: "1234"},
		{BadgeNum: "R200", Name: "Ivan", Active: false},
		{BadgeNum: "Z300", Name: "Broken"},
		{BadgeNum: "  "},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Processed != 3 || rep.Created != 1 || rep.Updated != 1 || rep.Failed != 1 {
		t.Fatalf("report = %+v", rep)
	}
	got := m.operators["R100"]
	if got.OperatorID != existing || got.OperatorName != "Ana" || got.OperatorPinCode == nil || *got.OperatorPinCode != "1234" {
		t.Errorf("updated operator = %+v", got)
	}
	if m.operators["R200"].OperatorActive {
		t.Error("R200 should be inactive")
	}
}

func TestSyncPros(t *testing.T) {
	dir := t.TempDir()
	jl, err := joblog.Open(dir, "PROsync.txt")
	if err != nil {
		t.Fatal(err)
	}
	m := newMemSync()
	sku := BuildSKU("ST1", "RED", "S")
	m.pros["P1"] = &mdModel.ProModel{ProName: "P1", ProSKU: sku, ProQty: 10, ProStatus: true}
	m.pros["P2"] = &mdModel.ProModel{ProName: "P2", ProSKU: sku, ProQty: 5, ProStatus: true}
	m.pros["P3"] = &mdModel.ProModel{ProName: "P3", ProSKU: "old", ProStatus: false}
	m.pros["P4"] = &mdModel.ProModel{ProName: "P4", ProSKU: "old", ProStatus: true}
	m.failOn = "P4"
	qty := 12

	rep, err := syncService(m, jl).SyncPros(context.Background(), []ProRecord{
		{ProName: "P1", Style: "ST1", Color: "RED", Size: "S", Qty: &qty, Status: "closed"},
		{ProName: "P2", Style: "ST1", Color: "RED", Size: "S"},
		{ProName: "P3", Style: "NEW"},
		{ProName: "P4", Style: "NEW"},
		{ProName: "P9", Style: "NEW"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Updated != 1 || rep.SetInactive != 1 || rep.Unchanged != 3 || rep.Failed != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if p := m.pros["P1"]; p.ProQty != 12 || p.ProStatus {
		t.Errorf("P1 = %+v", p)
	}
	if m.pros["P3"].ProSKU != "old" {
		t.Error("inactive PRO must not be touched")
	}

	b, err := os.ReadFile(filepath.Join(dir, "PROsync.txt"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{"PRO SYNC", "+ PRO P1: qty 10 -> 12 | status Active -> Inactive", "! P4: ", "Done. Processed 5, updated 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 301)) {
		t.Error("failure message should be truncated")
	}
}
