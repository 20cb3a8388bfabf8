package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	database "shopfloor_backend/internals/databases"
	"shopfloor_backend/internals/features/sessions/scheduler"
	authService "shopfloor_backend/internals/features/users/auth/service"
	"shopfloor_backend/internals/helpers/dbtime"
	middlewares "shopfloor_backend/internals/middlewares"
	routes "shopfloor_backend/internals/route"
	"shopfloor_backend/internals/seeds"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopfloor",
		Short:         "Shop-floor workforce and production tracking backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	serve := serveCmd()
	root.AddCommand(serve, jobsCmd(), migrateCmd(), seedCmd())
	root.RunE = serve.RunE
	return root
}

// bootstrap loads the environment, config, logger and time zone, then opens the database.
func bootstrap(ctx context.Context) (*configs.AppConfig, *gorm.DB, error) {
	configs.LoadEnv()
	cfg, err := configs.Load()
	if err != nil {
		return nil, nil, err
	}
	configs.InitLogger(cfg.LogLevel)
	dbtime.SetDefault(dbtime.Zone{Clock: dbtime.SystemClock{}, Loc: cfg.Location})

	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}
	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Ping(db.WithContext(ctx)); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	return cfg, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			database.TunePool(db)
			database.WarmUpQueries(db)

			tokens, err := authService.NewTokenService(cfg.JWTSecret, authService.DefaultTokenTTL)
			if err != nil {
				return err
			}

			app := fiber.New(fiber.Config{
				JSONEncoder:             sonic.Marshal,
				JSONDecoder:             sonic.Unmarshal,
				DisableStartupMessage:   true,
				ProxyHeader:             fiber.HeaderXForwardedFor,
				EnableTrustedProxyCheck: true,
				TrustedProxies:          []string{"0.0.0.0/0"},
			})
			middlewares.SetupMiddlewares(app, cfg)
			routes.SetupRoutes(app, db, cfg, tokens)

			app.Server().ReadTimeout = 15 * time.Second
			app.Server().WriteTimeout = 30 * time.Second
			app.Server().IdleTimeout = 90 * time.Second

			if cfg.CronEnabled {
				c, err := scheduler.NewJobs(db, cfg, log.Logger).Start()
				if err != nil {
					return err
				}
				defer c.Stop()
			}

			errc := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Msg("listening")
				errc <- app.Listen("0.0.0.0:" + cfg.Port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errc:
				return err
			case <-quit:
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(ctx)
		},
	}
}

func jobsCmd() *cobra.Command {
	jobs := &cobra.Command{Use: "jobs", Short: "Run a batch job once and exit"}
	var at string

	run := func(name string, pick func(*scheduler.Jobs) func(context.Context, *time.Time) (*scheduler.JobReport, error)) *cobra.Command {
		return &cobra.Command{
			Use:  name,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var pinned *time.Time
				if at != "" {
					t, err := time.Parse(time.RFC3339, at)
					if err != nil {
						return fmt.Errorf("--at: %w", err)
					}
					pinned = &t
				}
				cfg, db, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer database.Close(db)

				rep, err := pick(scheduler.NewJobs(db, cfg, log.Logger))(cmd.Context(), pinned)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), scheduler.Summary(rep))
				return nil
			},
		}
	}

	jobs.PersistentFlags().StringVar(&at, "at", "", "override now (RFC3339) for replays")
	jobs.AddCommand(
		run("auto-logout", func(j *scheduler.Jobs) func(context.Context, *time.Time) (*scheduler.JobReport, error) {
			return j.AutoLogout
		}),
		run("auto-break", func(j *scheduler.Jobs) func(context.Context, *time.Time) (*scheduler.JobReport, error) {
			return j.AutoBreak
		}),
	)
	return jobs
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table and index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.Migrate(cmd.Context(), db)
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := seeds.Load(file)
			if err != nil {
				return err
			}
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			rep, err := seeds.Run(cmd.Context(), db, doc, log.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "seeds.yaml", "path to the seed document")
	return cmd
}
