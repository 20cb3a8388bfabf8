package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	"shopfloor_backend/internals/features/sessions/repository"
	"shopfloor_backend/internals/features/sessions/service"
	"shopfloor_backend/internals/helpers/dbtime"
	"shopfloor_backend/internals/helpers/joblog"
)

const (
	AutoLogoutLogFile = "AutoLogout.txt"
	AutoBreakLogFile  = "AutoBreak30.txt"
)

type JobReport = service.JobReport

// Jobs runs the two batch passes against the database. Shared by the HTTP triggers,
// the CLI and the in-process cron.
type Jobs struct {
	DB  *gorm.DB
	Cfg *configs.AppConfig
	Log zerolog.Logger
}

func NewJobs(db *gorm.DB, cfg *configs.AppConfig, logger zerolog.Logger) *Jobs {
	return &Jobs{DB: db, Cfg: cfg, Log: logger.With().Str("component", "jobs").Logger()}
}

// engine pins "now" when at is set, for replays.
func (j *Jobs) engine(at *time.Time) *service.Engine {
	zone := dbtime.Default()
	if at != nil {
		zone.Clock = dbtime.FixedClock{At: *at}
	}
	return service.NewEngine(repository.NewGormStore(j.DB), zone, j.Log)
}

func (j *Jobs) Options() service.JobOptions {
	return service.JobOptions{BreakWindowDays: j.Cfg.AutoBreakWindowDays, BreakMinutes: j.Cfg.AutoBreakMinutes}
}

// AutoLogout fails only when the log file cannot be opened or the candidates cannot be read.
func (j *Jobs) AutoLogout(ctx context.Context, at *time.Time) (*service.JobReport, error) {
	w, err := joblog.Open(j.Cfg.JobLogDir, AutoLogoutLogFile)
	if err != nil {
		return nil, err
	}
	return j.finish("auto-logout", w)(j.engine(at).AutoLogout(ctx, w))
}

func (j *Jobs) AutoBreak(ctx context.Context, at *time.Time) (*service.JobReport, error) {
	w, err := joblog.Open(j.Cfg.JobLogDir, AutoBreakLogFile)
	if err != nil {
		return nil, err
	}
	return j.finish("auto-break", w)(j.engine(at).AutoBreak(ctx, j.Options(), w))
}

// finish keeps a finished report when only the log append failed.
func (j *Jobs) finish(name string, w *joblog.Writer) func(*service.JobReport, error) (*service.JobReport, error) {
	return func(rep *service.JobReport, err error) (*service.JobReport, error) {
		if err != nil && rep != nil {
			j.Log.Warn().Err(err).Str("job", name).Str("file", w.Path()).Msg("job log append failed")
			return rep, nil
		}
		return rep, err
	}
}

// Summary is the one-line result printed by the CLI.
func Summary(r *service.JobReport) string {
	updated, skipped := r.Counts()
	return fmt.Sprintf("updated=%d skipped=%d", updated, skipped)
}

// Start schedules both jobs; overlapping runs of the same job are skipped.
func (j *Jobs) Start() (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(j.Cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(j.Cfg.AutoLogoutCron, func() { j.runScheduled("auto-logout", j.AutoLogout) }); err != nil {
		return nil, fmt.Errorf("AUTO_LOGOUT_CRON: %w", err)
	}
	if _, err := c.AddFunc(j.Cfg.AutoBreakCron, func() { j.runScheduled("auto-break", j.AutoBreak) }); err != nil {
		return nil, fmt.Errorf("AUTO_BREAK_CRON: %w", err)
	}
	c.Start()
	j.Log.Info().Str("auto_logout", j.Cfg.AutoLogoutCron).Str("auto_break", j.Cfg.AutoBreakCron).Msg("job scheduler started")
	return c, nil
}

func (j *Jobs) runScheduled(name string, run func(context.Context, *time.Time) (*service.JobReport, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	rep, err := run(ctx, nil)
	if err != nil {
		j.Log.Error().Err(err).Str("job", name).Msg("scheduled run failed")
		return
	}
	updated, skipped := rep.Counts()
	j.Log.Info().Str("job", name).Int("updated", updated).Int("skipped", skipped).Msg("scheduled run finished")
}
