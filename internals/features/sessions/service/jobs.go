package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
	"shopfloor_backend/internals/helpers/joblog"
)

const (
	ReasonNoCalendar        = "no calendar"
	ReasonShiftNotFinished  = "shift not finished yet"
	ReasonNoLongerActive    = "no longer active"
	ReasonMissingLogoff     = "missing logoff time"
	ReasonLoginNotAtStart   = "login does not match shift start"
	ReasonLogoffNotAtEnd    = "logoff does not match shift end"
	ReasonAlreadyHasBreak   = "break already set"
	maxFailureMessageLength = 300
)

// RecordResult is the outcome of one record in a batch job.
type RecordResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Label     string    `json:"label,omitempty"`
	Date      string    `json:"date"`
	Detail    string    `json:"detail,omitempty"`
}

// JobReport aggregates a batch run. Failures never abort the batch.
type JobReport struct {
	Job        string         `json:"job"`
	RanAt      time.Time      `json:"ran_at"`
	From       *time.Time     `json:"from,omitempty"`
	To         *time.Time     `json:"to,omitempty"`
	Candidates int            `json:"candidates"`
	Updated    []RecordResult `json:"updated"`
	Skipped    []RecordResult `json:"skipped"`
	Failed     []RecordResult `json:"failed"`
}

// Counts returns (updated, skipped); failed records count as skipped.
func (r *JobReport) Counts() (int, int) {
	return len(r.Updated), len(r.Skipped) + len(r.Failed)
}

type JobOptions struct {
	BreakWindowDays int
	BreakMinutes    int
}

func (o JobOptions) withDefaults() JobOptions {
	if o.BreakWindowDays <= 0 {
		o.BreakWindowDays = 60
	}
	if o.BreakMinutes <= 0 {
		o.BreakMinutes = 30
	}
	return o
}

func failure(r RecordResult, err error) RecordResult {
	r.Detail = apperr.Truncate(err.Error(), maxFailureMessageLength)
	return r
}

// AutoLogout closes every ACTIVE session whose shift is over. Sessions of earlier dates
// always close; today's close only after shift end. w may be nil.
func (e *Engine) AutoLogout(ctx context.Context, w *joblog.Writer) (*JobReport, error) {
	now := e.zone.Now()
	rep := &JobReport{Job: "auto-logout", RanAt: now.Local}

	candidates, err := e.store.ActiveSessionsUpTo(ctx, now.Date)
	if err != nil {
		return nil, fmt.Errorf("auto-logout candidates: %w", err)
	}
	rep.Candidates = len(candidates)
	labels, err := e.store.OperatorLabels(ctx, operatorIDs(candidates))
	if err != nil {
		return nil, fmt.Errorf("auto-logout operators: %w", err)
	}

	for i := range candidates {
		c := candidates[i]
		rec := RecordResult{
			SessionID: c.OperatorSessionID,
			Label:     labels[c.OperatorSessionOperatorID],
			Date:      c.OperatorSessionLoginTeamDate.Format("2006-01-02"),
		}
		reason, err := e.autoLogoutOne(ctx, c.OperatorSessionID, now)
		switch {
		case err != nil:
			rep.Failed = append(rep.Failed, failure(rec, err))
			e.log.Error().Err(err).Str("session_id", rec.SessionID.String()).Msg("auto-logout failed")
		case reason != "":
			rec.Detail = reason
			rep.Skipped = append(rep.Skipped, rec)
			e.log.Debug().Str("session_id", rec.SessionID.String()).Str("reason", reason).Msg("auto-logout skipped")
		default:
			rep.Updated = append(rep.Updated, rec)
			e.log.Info().Str("session_id", rec.SessionID.String()).Msg("auto-logout closed")
		}
	}

	updated, skipped := rep.Counts()
	e.log.Info().Int("candidates", rep.Candidates).Int("updated", updated).Int("skipped", skipped).Msg("auto-logout done")
	if w != nil {
		if err := w.Append(rep.Block()); err != nil {
			return rep, fmt.Errorf("auto-logout log: %w", err)
		}
	}
	return rep, nil
}

func (e *Engine) autoLogoutOne(ctx context.Context, sessionID uuid.UUID, now dbtime.Moment) (string, error) {
	var reason string
	err := e.store.Transaction(ctx, func(tx Store) error {
		s, err := tx.FindSession(ctx, sessionID, true)
		if err != nil {
			return err
		}
		if s == nil || !s.IsActive() {
			reason = ReasonNoLongerActive
			return nil
		}
		shift, err := tx.FindShift(ctx, s.OperatorSessionTeamUserID, s.OperatorSessionLoginTeamDate)
		if err != nil {
			return err
		}
		if shift == nil {
			reason = ReasonNoCalendar
			return nil
		}
		if dbtime.SameDate(s.OperatorSessionLoginTeamDate, now.Date) && !shift.Finished(now) {
			reason = ReasonShiftNotFinished
			return nil
		}
		Close(s, shift, now, ClosingTime(s, now), e.zone.Loc)
		return tx.SaveSession(ctx, s)
	})
	return reason, err
}

// AutoBreak sets the break of completed full-shift sessions in the trailing window.
func (e *Engine) AutoBreak(ctx context.Context, opts JobOptions, w *joblog.Writer) (*JobReport, error) {
	opts = opts.withDefaults()
	now := e.zone.Now()
	from := now.Date.AddDate(0, 0, -opts.BreakWindowDays)
	to := now.Date
	rep := &JobReport{Job: "auto-break", RanAt: now.Local, From: &from, To: &to}

	candidates, err := e.store.CompletedWithoutBreak(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("auto-break candidates: %w", err)
	}
	rep.Candidates = len(candidates)
	labels, err := e.store.OperatorLabels(ctx, operatorIDs(candidates))
	if err != nil {
		return nil, fmt.Errorf("auto-break operators: %w", err)
	}

	for i := range candidates {
		c := candidates[i]
		rec := RecordResult{
			SessionID: c.OperatorSessionID,
			Label:     labels[c.OperatorSessionOperatorID],
			Date:      c.OperatorSessionLoginTeamDate.Format("2006-01-02"),
		}
		reason, err := e.autoBreakOne(ctx, c.OperatorSessionID, opts.BreakMinutes)
		switch {
		case err != nil:
			rep.Failed = append(rep.Failed, failure(rec, err))
			e.log.Error().Err(err).Str("session_id", rec.SessionID.String()).Msg("auto-break failed")
		case reason != "":
			rec.Detail = reason
			rep.Skipped = append(rep.Skipped, rec)
		default:
			rec.Detail = fmt.Sprintf("break=%d", opts.BreakMinutes)
			rep.Updated = append(rep.Updated, rec)
			e.log.Info().Str("session_id", rec.SessionID.String()).Int("break", opts.BreakMinutes).Msg("auto-break set")
		}
	}

	updated, skipped := rep.Counts()
	e.log.Info().Int("candidates", rep.Candidates).Int("updated", updated).Int("skipped", skipped).Msg("auto-break done")
	if w != nil {
		if err := w.Append(rep.Block()); err != nil {
			return rep, fmt.Errorf("auto-break log: %w", err)
		}
	}
	return rep, nil
}

func (e *Engine) autoBreakOne(ctx context.Context, sessionID uuid.UUID, minutes int) (string, error) {
	var reason string
	err := e.store.Transaction(ctx, func(tx Store) error {
		s, err := tx.FindSession(ctx, sessionID, true)
		if err != nil {
			return err
		}
		if s == nil || s.OperatorSessionStatus != sessModel.StatusCompleted {
			reason = ReasonNoLongerActive
			return nil
		}
		if s.OperatorSessionBreakMinutes != nil {
			reason = ReasonAlreadyHasBreak
			return nil
		}
		shift, err := tx.FindShift(ctx, s.OperatorSessionTeamUserID, s.OperatorSessionLoginTeamDate)
		if err != nil {
			return err
		}
		if shift == nil {
			reason = ReasonNoCalendar
			return nil
		}
		ok, why := QualifiesForAutoBreak(s, shift)
		if !ok {
			reason = why
			return nil
		}
		m := minutes
		s.OperatorSessionBreakMinutes = &m
		return tx.SaveSession(ctx, s)
	})
	return reason, err
}

// Block renders the report as one append-only log block.
func (r *JobReport) Block() *joblog.Block {
	title := fmt.Sprintf("%s RUN", upper(r.Job))
	if r.From != nil && r.To != nil {
		title = fmt.Sprintf("%s CHECK (%s -> %s)", upper(r.Job), r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	b := joblog.NewBlock(title, r.RanAt)
	updated, skipped := r.Counts()
	b.Linef("Candidates: %d", r.Candidates)
	for _, u := range r.Updated {
		b.Linef("+ ID %s -> %s [%s] (%s)", u.SessionID, nonEmpty(u.Detail, "closed"), u.Date, u.Label)
	}
	for _, s := range r.Skipped {
		b.Linef("- ID %s skipped: %s [%s] (%s)", s.SessionID, s.Detail, s.Date, s.Label)
	}
	for _, f := range r.Failed {
		b.Linef("! ID %s failed: %s", f.SessionID, f.Detail)
	}
	b.Linef("Done. Updated %d, skipped %d (failed %d)", updated, skipped, len(r.Failed))
	return b
}

func operatorIDs(ss []sessModel.OperatorSessionModel) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ss))
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s.OperatorSessionOperatorID]; ok {
			continue
		}
		seen[s.OperatorSessionOperatorID] = struct{}{}
		out = append(out, s.OperatorSessionOperatorID)
	}
	return out
}

func upper(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", " "))
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
