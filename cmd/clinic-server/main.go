package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dentora/clinic/internal/config"
	"github.com/dentora/clinic/internal/domain/identity"
	"github.com/dentora/clinic/internal/domain/records"
	"github.com/dentora/clinic/internal/domain/scheduling"
	"github.com/dentora/clinic/internal/platform/auth"
	"github.com/dentora/clinic/internal/platform/cache"
	"github.com/dentora/clinic/internal/platform/db"
	"github.com/dentora/clinic/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic administration API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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
			dir, _ := cmd.Flags().GetString("dir")

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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// appointmentResolver adapts the scheduling service to the consumer-side
// interface the records service declares, translating sentinel errors across
// the package boundary.
type appointmentResolver struct {
	sched *scheduling.Service
}

func (a *appointmentResolver) ResolveAppointment(ctx context.Context, id uuid.UUID) (*records.Visit, error) {
	v, err := a.sched.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			return nil, records.ErrNotFound
		}
		return nil, err
	}
	return &records.Visit{
		AttendingDoctorStaffID: v.AttendingDoctorStaffID,
		PatientID:              v.PatientID,
		ScheduledAt:            v.ScheduledAt,
	}, nil
}

// staffDirectory adapts the identity service (optionally fronted by the
// Redis cache) to the records-side interface, translating sentinel errors
// across the package boundary.
type staffDirectory struct {
	next cache.StaffLookup
}

func (d *staffDirectory) IsActiveStaff(ctx context.Context, id uuid.UUID) (bool, error) {
	active, err := d.next.IsActiveStaff(ctx, id)
	if errors.Is(err, identity.ErrNotFound) {
		return false, records.ErrNotFound
	}
	return active, err
}

func (d *staffDirectory) IsActiveDoctor(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.next.IsActiveDoctor(ctx, id)
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware([]byte(cfg.AuthSigningKey)))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.Use(middleware.Audit(logger))

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Identity domain
	accountRepo := identity.NewAccountRepoPG(pool)
	profileRepo := identity.NewProfileRepoPG(pool)
	staffRepo := identity.NewStaffRepoPG(pool)
	licenseRepo := identity.NewLicenseRepoPG(pool)
	identitySvc := identity.NewService(accountRepo, profileRepo, staffRepo, licenseRepo)
	identitySvc.SetTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	})
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	// Optional Redis cache in front of staff lookups. Doctor capability
	// checks bypass it; see cache.StaffDirectory. Termination drops the
	// cached entry so the authoring path sees it before TTL expiry.
	var lookup cache.StaffLookup = identitySvc
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		cacheDir := cache.NewStaffDirectory(identitySvc, rdb, logger)
		identitySvc.SetStaffInvalidator(cacheDir.Invalidate)
		lookup = cacheDir
		logger.Info().Msg("staff lookup cache enabled")
	}
	staffDir := &staffDirectory{next: lookup}

	// Scheduling domain
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedSvc := scheduling.NewService(apptRepo, identitySvc)
	schedHandler := scheduling.NewHandler(schedSvc)
	schedHandler.RegisterRoutes(apiV1)

	// Records domain
	recordRepo := records.NewRecordRepoPG(pool)
	recordSvc := records.NewService(recordRepo, &appointmentResolver{sched: schedSvc}, staffDir)
	recordHandler := records.NewHandler(recordSvc)
	recordHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
