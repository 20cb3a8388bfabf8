package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
	"shopfloor_backend/internals/helpers/joblog"
)

// OperatorRecord is one row of the upstream personnel export.
type OperatorRecord struct {
	BadgeNum string `json:"badge_num"`
	Name     string `json:"name"`
	Active   bool   `json:"act"`
	PinCode  string `json:"pin_code"`
	Func     string `json:"func"`
}

// ProRecord is one row of the upstream PO summary, looked up by PRO name.
type ProRecord struct {
	ProName      string     `json:"pro_name"`
	Style        string     `json:"style"`
	Color        string     `json:"color"`
	Size         string     `json:"size"`
	Qty          *int       `json:"qty"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Status       string     `json:"status"`
	Destination  string     `json:"destination"`
	TPP          string     `json:"tpp"`
	Skeda        string     `json:"skeda"`
}

// SyncStore persists synced master data. Finders return (nil, nil) when missing.
type SyncStore interface {
	FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error)
	UpsertOperator(ctx context.Context, m *mdModel.OperatorModel) error
	FindProByName(ctx context.Context, name string) (*mdModel.ProModel, error)
	SavePro(ctx context.Context, m *mdModel.ProModel) error
}

type SyncReport struct {
	Processed   int      `json:"processed"`
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Unchanged   int      `json:"unchanged"`
	SetInactive int      `json:"set_inactive,omitempty"`
	Failed      int      `json:"failed"`
	Changes     []string `json:"changes,omitempty"`
}

type SyncService struct {
	store SyncStore
	zone  dbtime.Zone
	log   zerolog.Logger
	jl    *joblog.Writer
}

// NewSyncService builds the sync; jl may be nil to skip the text log.
func NewSyncService(store SyncStore, zone dbtime.Zone, logger zerolog.Logger, jl *joblog.Writer) *SyncService {
	return &SyncService{store: store, zone: zone, log: logger.With().Str("component", "sync").Logger(), jl: jl}
}

// BuildSKU joins style (9 chars), color (4 chars) and size the way the PO summary encodes SKUs.
func BuildSKU(style, color, size string) string {
	return fit(style, 9) + fit(color, 4) + size
}

func fit(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + strings.Repeat(" ", n-len(r))
}

// SyncOperators upserts operators keyed by badge. Each record stands alone: a failing
// record is counted and the rest continue.
func (s *SyncService) SyncOperators(ctx context.Context, records []OperatorRecord) (*SyncReport, error) {
	rep := &SyncReport{}
	block := joblog.NewBlock("OPERATOR SYNC", s.zone.Now().Local)
	for _, rec := range records {
		badge := mdModel.NormalizeBadge(rec.BadgeNum)
		if badge == "" {
			continue
		}
		rep.Processed++

		cur, err := s.store.FindOperatorByBadge(ctx, badge)
		if err != nil {
			s.fail(rep, block, badge, err)
			continue
		}
		m := &mdModel.OperatorModel{
			OperatorBadgeNum: badge,
			OperatorName:     strings.TrimSpace(rec.Name),
			OperatorActive:   rec.Active,
			OperatorFunc:     strings.TrimSpace(rec.Func),
		}
		if pin := strings.TrimSpace(rec.PinCode); pin != "" {
			m.OperatorPinCode = &pin
		}
		if cur != nil {
			m.OperatorID = cur.OperatorID
		}
		if err := s.store.UpsertOperator(ctx, m); err != nil {
			s.fail(rep, block, badge, err)
			continue
		}
		if cur == nil {
			rep.Created++
		} else {
			rep.Updated++
		}
	}
	block.Linef("Done. Created %d, updated %d, failed %d.", rep.Created, rep.Updated, rep.Failed)
	s.finish("operators", rep, block)
	return rep, nil
}

// SyncPros refreshes existing active PROs from the PO summary. Unknown or inactive PROs are
// left alone; a "closed" upstream status deactivates the PRO.
func (s *SyncService) SyncPros(ctx context.Context, records []ProRecord) (*SyncReport, error) {
	rep := &SyncReport{}
	block := joblog.NewBlock("PRO SYNC", s.zone.Now().Local)
	for _, rec := range records {
		name := strings.TrimSpace(rec.ProName)
		if name == "" {
			continue
		}
		rep.Processed++

		pro, err := s.store.FindProByName(ctx, name)
		if err != nil {
			s.fail(rep, block, name, err)
			continue
		}
		if pro == nil || !pro.ProStatus {
			rep.Unchanged++
			continue
		}
		changes := applyProRecord(pro, rec)
		if len(changes) == 0 {
			rep.Unchanged++
			continue
		}
		if err := s.store.SavePro(ctx, pro); err != nil {
			s.fail(rep, block, name, err)
			continue
		}
		if !pro.ProStatus {
			rep.SetInactive++
		}
		rep.Updated++
		line := fmt.Sprintf("+ PRO %s: %s", name, strings.Join(changes, " | "))
		rep.Changes = append(rep.Changes, line)
		block.Linef("%s", line)
	}
	block.Linef("Done. Processed %d, updated %d, unchanged %d, set inactive %d.", rep.Processed, rep.Updated, rep.Unchanged, rep.SetInactive)
	s.finish("pros", rep, block)
	return rep, nil
}

func applyProRecord(pro *mdModel.ProModel, rec ProRecord) []string {
	var changes []string
	if sku := BuildSKU(rec.Style, rec.Color, rec.Size); sku != pro.ProSKU {
		changes = append(changes, fmt.Sprintf("sku %s -> %s", pro.ProSKU, sku))
		pro.ProSKU = sku
	}
	if rec.Qty != nil && *rec.Qty != pro.ProQty {
		changes = append(changes, fmt.Sprintf("qty %d -> %d", pro.ProQty, *rec.Qty))
		pro.ProQty = *rec.Qty
	}
	if rec.DeliveryDate != nil {
		d := dbtime.DateOf(*rec.DeliveryDate)
		if pro.ProDelDate == nil || !pro.ProDelDate.Equal(d) {
			changes = append(changes, fmt.Sprintf("del_date %s -> %s", formatDate(pro.ProDelDate), d.Format("2006-01-02")))
			pro.ProDelDate = &d
		}
	}
	if rec.Destination != pro.ProDestination {
		changes = append(changes, fmt.Sprintf("dest %s -> %s", pro.ProDestination, rec.Destination))
		pro.ProDestination = rec.Destination
	}
	if rec.TPP != pro.ProTPP {
		changes = append(changes, fmt.Sprintf("tpp %s -> %s", pro.ProTPP, rec.TPP))
		pro.ProTPP = rec.TPP
	}
	if rec.Skeda != pro.ProSkeda {
		changes = append(changes, fmt.Sprintf("skeda %s -> %s", pro.ProSkeda, rec.Skeda))
		pro.ProSkeda = rec.Skeda
	}
	if strings.EqualFold(strings.TrimSpace(rec.Status), "closed") && pro.ProStatus {
		pro.ProStatus = false
		changes = append(changes, "status Active -> Inactive")
	}
	return changes
}

func formatDate(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format("2006-01-02")
}

func (s *SyncService) fail(rep *SyncReport, block *joblog.Block, key string, err error) {
	rep.Failed++
	msg := apperr.Truncate(err.Error(), 300)
	block.Linef("! %s: %s", key, msg)
	s.log.Error().Str("key", key).Str("error", msg).Msg("sync record failed")
}

func (s *SyncService) finish(what string, rep *SyncReport, block *joblog.Block) {
	s.log.Info().
		Str("sync", what).
		Int("processed", rep.Processed).
		Int("created", rep.Created).
		Int("updated", rep.Updated).
		Int("failed", rep.Failed).
		Msg("sync finished")
	if s.jl == nil {
		return
	}
	if err := s.jl.Append(block); err != nil {
		s.log.Error().Err(err).Str("path", s.jl.Path()).Msg("append sync log")
	}
}
