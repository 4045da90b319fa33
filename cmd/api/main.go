package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis"
	analysisrepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/foodlog"
	logrepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/foodlog/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile"
	profilerepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/setting"
	settingrepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/setting/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

func main() {
	ensureTables := flag.Bool("ensure-tables", false, "create the service tables if missing, then continue")
	seedFilters := flag.Bool("seed-filters", false, "store the active food filter config in the settings table and exit")
	flag.Parse()

	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-nutrition-go")

	// init db
	dbCfg := database.ConfigFromEnv()
	db, err := database.ConnectX(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// calendar days follow the database session zone
	loc, err := dbCfg.Location()
	if err != nil {
		sugar.Fatalf("db timezone: %v", err)
	}
	clock := utilities.ClockIn(loc)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileRepo := profilerepo.NewProfileRepo(db)
	userRepo := userrepo.NewUserRepo(db, profileRepo)
	logRepo := logrepo.NewLogRepo(db)
	settingRepo := settingrepo.NewRepo(db)

	if *ensureTables {
		if err := ensureAll(ctx, userRepo, profileRepo, logRepo, settingRepo); err != nil {
			sugar.Fatalf("ensure tables: %v", err)
		}
		sugar.Info("tables ensured")
	}

	settingSvc := setting.NewService(settingRepo)
	filters, err := filter.NewStore(ctx, filterLoader(settingSvc), sugar)
	if err != nil {
		sugar.Fatalf("food filters: %v", err)
	}
	if *seedFilters {
		if err := settingSvc.SaveFilterConfig(ctx, filters.Current().Config()); err != nil {
			sugar.Fatalf("seed food filters: %v", err)
		}
		sugar.Info("food filters stored in settings")
		return
	}
	go reloadOnHangup(ctx, filters, sugar)

	tokens, err := auth.NewTokens(auth.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("tokens: %v", err)
	}
	ids, err := utilities.SnowflakeFromEnv()
	if err != nil {
		sugar.Fatalf("snowflake: %v", err)
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, tokens, router.Handlers{
		Users:    user.NewHandler(user.NewUserService(userRepo, nil, tokens, sugar), sugar),
		Profiles: profile.NewHandler(profile.NewService(profileRepo, sugar).WithClock(clock), sugar),
		Logs:     foodlog.NewHandler(foodlog.NewService(logRepo, ids, sugar).WithClock(clock), sugar),
		Analysis: analysis.NewHandler(analysis.NewService(analysisrepo.NewAnalysisRepo(db), filters, sugar).WithClock(clock), sugar),
		Settings: setting.NewHandler(filters, sugar),
	})
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

// filterLoader prefers FOOD_FILTERS_FILE, then the settings row, then the
// built-in defaults.
func filterLoader(settings *setting.Service) filter.Loader {
	if path := os.Getenv("FOOD_FILTERS_FILE"); path != "" {
		return filter.FileLoader(path)
	}
	return settings.FilterLoader(filter.StaticLoader(filter.Default()))
}

// reloadOnHangup swaps in a fresh filter snapshot on SIGHUP. A failed reload
// keeps the current snapshot.
func reloadOnHangup(ctx context.Context, filters *filter.Store, logger *zap.SugaredLogger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := filters.Reload(ctx); err != nil {
				logger.Warnw("food filter reload failed", "err", err)
			}
		}
	}
}

type tableOwner interface {
	EnsureTable(ctx context.Context) error
}

// ensureAll creates tables in foreign key order. The catalog tables are
// loaded by the food data import and must already exist.
func ensureAll(ctx context.Context, owners ...tableOwner) error {
	for _, o := range owners {
		if err := o.EnsureTable(ctx); err != nil {
			return err
		}
	}
	return nil
}
