package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	calModel "shopfloor_backend/internals/features/calendar/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

// Store is the persistence of the shift calendar. Finders return (nil, nil) when missing.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)
	FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error)
	ShiftsOn(ctx context.Context, teamUserID uuid.UUID, dates []time.Time) ([]calModel.ShiftEntryModel, error)
	ShiftsBetween(ctx context.Context, teamUserID *uuid.UUID, from, to time.Time) ([]calModel.ShiftEntryModel, error)
	UpsertShifts(ctx context.Context, entries []calModel.ShiftEntryModel) error
	DeleteShifts(ctx context.Context, teamUserID uuid.UUID, dates []time.Time) (int64, error)
}

type Service struct {
	store Store
	zone  dbtime.Zone
	log   zerolog.Logger
}

func NewService(store Store, zone dbtime.Zone, logger zerolog.Logger) *Service {
	return &Service{store: store, zone: zone, log: logger.With().Str("component", "calendar").Logger()}
}

type BulkUpsert struct {
	TeamUserID uuid.UUID
	From       time.Time
	To         time.Time
	Dates      []time.Time
	Start      dbtime.Tod
	End        dbtime.Tod
}

type BulkResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
}

// BulkUpsert writes one shift window onto the selected dates of a team.
// Selected dates outside [From, To] are ignored. Past dates are rejected, and today
// only while today's existing shift has not started.
func (s *Service) BulkUpsert(ctx context.Context, in BulkUpsert) (*BulkResult, error) {
	from, to := dbtime.DateOf(in.From), dbtime.DateOf(in.To)
	if from.After(to) {
		return nil, apperr.InvalidField("date_to", "end date must be on or after start date")
	}
	if !in.Start.Before(in.End.Time) {
		return nil, apperr.InvalidField("shift_end", "shift end must be after shift start")
	}
	dates := inRange(in.Dates, from, to)
	if len(dates) == 0 {
		return nil, apperr.InvalidField("dates", "select at least one day between %s and %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	now := s.zone.Now()

	res := &BulkResult{Created: []string{}, Updated: []string{}}
	err := s.store.Transaction(ctx, func(tx Store) error {
		if err := requirePlannableTeam(ctx, tx, in.TeamUserID); err != nil {
			return err
		}
		existing, err := tx.ShiftsOn(ctx, in.TeamUserID, dates)
		if err != nil {
			return err
		}
		byDate := make(map[time.Time]calModel.ShiftEntryModel, len(existing))
		for _, e := range existing {
			byDate[dbtime.DateOf(e.ShiftEntryDate)] = e
		}

		entries := make([]calModel.ShiftEntryModel, 0, len(dates))
		for _, d := range dates {
			if d.Before(now.Date) {
				return apperr.InvalidField("dates", "cannot modify past date %s", d.Format("2006-01-02"))
			}
			cur, exists := byDate[d]
			if d.Equal(now.Date) && exists && cur.Started(now) {
				if cur.Finished(now) {
					return apperr.InvalidField("dates", "cannot modify today's shift (%s-%s): it has already finished", cur.ShiftEntryStart, cur.ShiftEntryEnd)
				}
				return apperr.InvalidField("dates", "cannot modify today's shift (%s-%s): it is currently active", cur.ShiftEntryStart, cur.ShiftEntryEnd)
			}
			entries = append(entries, calModel.ShiftEntryModel{
				ShiftEntryTeamUserID: in.TeamUserID,
				ShiftEntryDate:       d,
				ShiftEntryStart:      in.Start,
				ShiftEntryEnd:        in.End,
			})
			if exists {
				res.Updated = append(res.Updated, d.Format("2006-01-02"))
			} else {
				res.Created = append(res.Created, d.Format("2006-01-02"))
			}
		}
		return tx.UpsertShifts(ctx, entries)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("team_user_id", in.TeamUserID.String()).
		Int("created", len(res.Created)).
		Int("updated", len(res.Updated)).
		Msg("calendar bulk upsert")
	return res, nil
}

// BulkDelete removes shifts of future dates, or today's shift before it starts.
func (s *Service) BulkDelete(ctx context.Context, teamUserID uuid.UUID, dates []time.Time) (int64, error) {
	dates = uniqueDates(dates)
	if len(dates) == 0 {
		return 0, apperr.InvalidField("dates", "select at least one entry")
	}
	now := s.zone.Now()
	var deleted int64
	err := s.store.Transaction(ctx, func(tx Store) error {
		existing, err := tx.ShiftsOn(ctx, teamUserID, dates)
		if err != nil {
			return err
		}
		for _, e := range existing {
			d := dbtime.DateOf(e.ShiftEntryDate)
			if d.Before(now.Date) {
				return apperr.InvalidField("dates", "cannot delete calendar entry for %s: it is in the past", d.Format("2006-01-02"))
			}
			if d.Equal(now.Date) && e.Started(now) {
				return apperr.InvalidField("dates", "cannot delete today's entry: shift already started")
			}
		}
		deleted, err = tx.DeleteShifts(ctx, teamUserID, dates)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("team_user_id", teamUserID.String()).Int64("deleted", deleted).Msg("calendar bulk delete")
	return deleted, nil
}

func (s *Service) List(ctx context.Context, teamUserID *uuid.UUID, from, to time.Time) ([]calModel.ShiftEntryModel, error) {
	if from.After(to) {
		return nil, apperr.InvalidField("to", "must be on or after from")
	}
	return s.store.ShiftsBetween(ctx, teamUserID, dbtime.DateOf(from), dbtime.DateOf(to))
}

// Today returns today's shift of the team, nil when none is planned.
func (s *Service) Today(ctx context.Context, teamUserID uuid.UUID) (*calModel.ShiftEntryModel, error) {
	return s.store.FindShift(ctx, teamUserID, s.zone.Today())
}

func requirePlannableTeam(ctx context.Context, tx Store, id uuid.UUID) error {
	team, err := tx.FindTeamUser(ctx, id)
	if err != nil {
		return err
	}
	if team == nil || !team.TeamUserIsActive {
		return apperr.NotFound("team user not found or inactive")
	}
	if team.TeamUserSubdepartmentID == nil {
		return apperr.InvalidField("team_user_id", "team user %s has no subdepartment", team.TeamUserUsername)
	}
	return nil
}

func inRange(dates []time.Time, from, to time.Time) []time.Time {
	var out []time.Time
	for _, d := range uniqueDates(dates) {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out
}

func uniqueDates(in []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(in))
	out := make([]time.Time, 0, len(in))
	for _, d := range in {
		d = dbtime.DateOf(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
