package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shopfloor_backend/internals/helpers/dbtime"
)

// Loader reads the facts of one day.
type Loader interface {
	DayFacts(ctx context.Context, date time.Time) (*Facts, error)
}

type Report struct {
	Date string `json:"date"`
	Rows []Row  `json:"rows"`
}

type Service struct {
	loader Loader
	zone   dbtime.Zone
	log    zerolog.Logger
}

func NewService(loader Loader, zone dbtime.Zone, logger zerolog.Logger) *Service {
	return &Service{loader: loader, zone: zone, log: logger.With().Str("component", "capacity").Logger()}
}

// Report aggregates date, today when nil.
func (s *Service) Report(ctx context.Context, date *time.Time) (*Report, error) {
	day := s.zone.Today()
	if date != nil {
		day = dbtime.DateOf(*date)
	}
	facts, err := s.loader.DayFacts(ctx, day)
	if err != nil {
		return nil, err
	}
	rows := Aggregate(*facts)
	s.log.Debug().Str("date", day.Format("2006-01-02")).Int("rows", len(rows)).Msg("capacity report")
	return &Report{Date: day.Format("2006-01-02"), Rows: rows}, nil
}
