package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

// CountedStatuses are the statuses whose sessions add session time and list an operator.
var CountedStatuses = []sessModel.SessionStatus{sessModel.StatusActive, sessModel.StatusCompleted}

type OperatorFact struct {
	OperatorID uuid.UUID
	BadgeNum   string
	Name       string
}

type SessionFact struct {
	SessionID    uuid.UUID
	OperatorID   uuid.UUID
	TeamName     string
	Status       sessModel.SessionStatus
	Login        dbtime.Tod
	Logoff       *dbtime.Tod
	BreakMinutes *int
}

type DowntimeFact struct {
	SessionID uuid.UUID
	Total     decimal.Decimal
}

type DeclarationFact struct {
	OperatorID uuid.UUID
	Qty        int
	SMV        *decimal.Decimal
	CreatedAt  time.Time
}

// Facts is everything recorded for one day.
type Facts struct {
	Operators    []OperatorFact
	Sessions     []SessionFact
	Downtimes    []DowntimeFact
	Declarations []DeclarationFact
}

type Row struct {
	OperatorID       uuid.UUID `json:"operator_id"`
	BadgeNum         string    `json:"badge_num"`
	Name             string    `json:"name"`
	Team             string    `json:"team,omitempty"`
	SessionRanges    []string  `json:"session_ranges"`
	SessionMinutes   float64   `json:"session_minutes"`
	BreakMinutes     float64   `json:"break_minutes"`
	DowntimeMinutes  float64   `json:"downtime_minutes"`
	AvailableMinutes float64   `json:"available_minutes"`
	WorkedQty        int       `json:"worked_qty"`
	WorkedMinutes    float64   `json:"worked_minutes"`
	LastSMV          *float64  `json:"last_smv"`
	Efficiency       float64   `json:"efficiency"`
}

var hundred = decimal.NewFromInt(100)

func counted(s sessModel.SessionStatus) bool {
	for _, c := range CountedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

func round1(d decimal.Decimal) float64 { return d.Round(1).InexactFloat64() }

type tally struct {
	op        OperatorFact
	team      string
	ranges    []string
	sessions  decimal.Decimal
	breaks    decimal.Decimal
	downtime  decimal.Decimal
	qty       int
	worked    decimal.Decimal
	lastSMV   *decimal.Decimal
	lastAt    time.Time
	firstOpen *SessionFact
}

// Aggregate builds one row per operator with at least one counted session.
// Rows are sorted by efficiency descending, then badge.
func Aggregate(f Facts) []Row {
	names := make(map[uuid.UUID]OperatorFact, len(f.Operators))
	for _, op := range f.Operators {
		names[op.OperatorID] = op
	}

	sessions := make([]SessionFact, 0, len(f.Sessions))
	for _, s := range f.Sessions {
		if counted(s.Status) {
			sessions = append(sessions, s)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Login.Before(sessions[j].Login.Time) })

	byOp := map[uuid.UUID]*tally{}
	owner := make(map[uuid.UUID]uuid.UUID, len(f.Sessions))
	for i := range sessions {
		s := &sessions[i]
		t, ok := byOp[s.OperatorID]
		if !ok {
			op, known := names[s.OperatorID]
			if !known {
				op = OperatorFact{OperatorID: s.OperatorID}
			}
			t = &tally{op: op}
			byOp[s.OperatorID] = t
		}
		if s.Logoff == nil {
			if t.firstOpen == nil {
				t.firstOpen = s
			}
			continue
		}
		span := dbtime.Span(s.Login, *s.Logoff)
		if span <= 0 {
			continue
		}
		if t.team == "" {
			t.team = s.TeamName
		}
		t.ranges = append(t.ranges, s.Login.String()+"–"+s.Logoff.String())
		t.sessions = t.sessions.Add(decimal.NewFromFloat(span))
	}

	// breaks and downtime count from every session of a listed operator, whatever its status
	for _, s := range f.Sessions {
		t, ok := byOp[s.OperatorID]
		if !ok {
			continue
		}
		owner[s.SessionID] = s.OperatorID
		if s.BreakMinutes != nil {
			t.breaks = t.breaks.Add(decimal.NewFromInt(int64(*s.BreakMinutes)))
		}
	}

	for _, d := range f.Downtimes {
		if op, ok := owner[d.SessionID]; ok {
			byOp[op].downtime = byOp[op].downtime.Add(d.Total)
		}
	}

	for _, d := range f.Declarations {
		t, ok := byOp[d.OperatorID]
		if !ok || d.SMV == nil {
			continue
		}
		t.qty += d.Qty
		t.worked = t.worked.Add(decimal.NewFromInt(int64(d.Qty)).Mul(*d.SMV))
		if t.lastSMV == nil || !d.CreatedAt.Before(t.lastAt) {
			smv := *d.SMV
			t.lastSMV, t.lastAt = &smv, d.CreatedAt
		}
	}

	rows := make([]Row, 0, len(byOp))
	for _, t := range byOp {
		available := t.sessions.Sub(t.breaks).Sub(t.downtime)
		if available.IsNegative() {
			available = decimal.Zero
		}
		eff := decimal.Zero
		if available.IsPositive() {
			eff = t.worked.Div(available).Mul(hundred)
		}
		team := t.team
		if team == "" && t.firstOpen != nil {
			team = t.firstOpen.TeamName
		}
		r := Row{
			OperatorID:       t.op.OperatorID,
			BadgeNum:         t.op.BadgeNum,
			Name:             t.op.Name,
			Team:             team,
			SessionRanges:    t.ranges,
			SessionMinutes:   round1(t.sessions),
			BreakMinutes:     round1(t.breaks),
			DowntimeMinutes:  round1(t.downtime),
			AvailableMinutes: round1(available),
			WorkedQty:        t.qty,
			WorkedMinutes:    round1(t.worked),
			Efficiency:       round1(eff),
		}
		if r.SessionRanges == nil {
			r.SessionRanges = []string{}
		}
		if t.lastSMV != nil {
			v := t.lastSMV.Round(2).InexactFloat64()
			r.LastSMV = &v
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Efficiency != rows[j].Efficiency {
			return rows[i].Efficiency > rows[j].Efficiency
		}
		return rows[i].BadgeNum < rows[j].BadgeNum
	})
	return rows
}
