package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/gql"
	"github.com/clinic/clinic/internal/seed"
	"github.com/clinic/clinic/migrations"
)

// defaultSchema holds the clinic tables and schema_migrations.
const defaultSchema = "public"

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Clinic records GraphQL API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				migrator := db.NewMigrator(pool, migrationSource(dir))
				fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)

				count, err := migrator.Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	addMigrationFlags(upCmd)
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				statuses, err := db.NewMigrator(pool, migrationSource(dir)).Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatus(cmd, schema, statuses)
				return nil
			})
		},
	}
	addMigrationFlags(statusCmd)
	cmd.AddCommand(statusCmd)

	return cmd
}

func addMigrationFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", defaultSchema, "Target schema for migrations")
	cmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
}

// migrationSource prefers an on-disk directory when one is given.
func migrationSource(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func printStatus(cmd *cobra.Command, schema string, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with generated sample records",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedValue, _ := cmd.Flags().GetUint64("seed")
			password, _ := cmd.Flags().GetString("password")
			counts := seed.DefaultCounts()
			counts.Patients, _ = cmd.Flags().GetInt("patients")
			counts.Doctors, _ = cmd.Flags().GetInt("doctors")
			counts.Inventory, _ = cmd.Flags().GetInt("inventory")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}
			logger := newLogger(cfg.Env)

			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				ctx = logger.WithContext(ctx)
				app := newApp(cfg, pool)
				seeder := seed.New(app.tx, seed.NewPGTruncater(pool), app.identity, app.encounters, app.inventory,
					seedValue, password, counts)
				return seeder.Run(ctx)
			})
		},
	}
	defaults := seed.DefaultCounts()
	cmd.Flags().Uint64("seed", 0, "Random seed; 0 picks one at random")
	cmd.Flags().String("password", "changeme", "Password given to every generated account")
	cmd.Flags().Int("patients", defaults.Patients, "Number of patients, each with one assessment and prescription")
	cmd.Flags().Int("doctors", defaults.Doctors, "Number of doctors")
	cmd.Flags().Int("inventory", defaults.Inventory, "Number of inventory lots")
	return cmd
}

func withPool(fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// app holds the wired services shared by serve and seed.
type app struct {
	tx         db.Transactor
	issuer     *auth.TokenIssuer
	identity   *identity.Service
	encounters *encounter.Service
	inventory  *inventory.Service
}

func newApp(cfg *config.Config, pool *pgxpool.Pool) *app {
	tx := db.NewTransactor(pool)
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL)

	identitySvc := identity.NewService(
		identity.NewPatientRepo(pool),
		identity.NewDoctorRepo(pool),
		auth.NewPasswordHasher(cfg.BcryptCost),
		issuer,
	)
	encounterSvc := encounter.NewService(tx, identitySvc,
		encounter.NewAssessmentRepo(pool),
		encounter.NewPrescriptionRepo(pool),
	)

	return &app{
		tx:         tx,
		issuer:     issuer,
		identity:   identitySvc,
		encounters: encounterSvc,
		inventory:  inventory.NewService(inventory.NewRepo(pool)),
	}
}

func (a *app) services() gql.Services {
	return gql.Services{Identity: a.identity, Encounters: a.encounters, Inventory: a.inventory}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(os.Getenv("ENV"))
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	a := newApp(cfg, pool)
	e, err := newServer(cfg, logger, a.services(), a.issuer, db.HealthHandler(pool, defaultSchema))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
