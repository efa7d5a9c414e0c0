package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/config"
	"github.com/ovaphlow/pitchfork/service-user-registry/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-user-registry/internal/notifier"
	"github.com/ovaphlow/pitchfork/service-user-registry/internal/router"
	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-user-registry/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-registry/pkg/database"
	"github.com/ovaphlow/pitchfork/service-user-registry/pkg/utilities"
)

func main() {
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
	sugar.Info("starting service-user-registry")

	cfg, err := config.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("store: %v", err)
	}
	defer closeStore()

	ids, err := utilities.NewIDGeneratorFromEnv()
	if err != nil {
		sugar.Fatalf("id generator: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	welcome := notifier.NewAsync(notifier.NewLogNotifier(sugar), sugar, collector, cfg.NotifyTimeout)
	svc := user.NewUserService(store, ids, welcome, collector, sugar)

	handler := router.RegisterRoutes(sugar, user.NewHandler(svc, sugar), reg, router.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", cfg.Addr, "store", cfg.StoreDriver)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	// in-flight welcome emails are bounded by NOTIFY_TIMEOUT
	welcome.Wait()

	sugar.Info("goodbye")
}

// openStore builds the document store selected by STORE_DRIVER and makes
// sure the document exists. The returned func releases its resources.
func openStore(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (userrepo.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		st := userrepo.NewPostgresStore(db, cfg.DocumentName)
		if err := st.EnsureTable(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure documents table: %w", err)
		}
		sugar.Infow("using postgres document store", "document", cfg.DocumentName)
		return st, func() { db.Close() }, nil
	default:
		st := userrepo.NewFileStore(cfg.UsersFile)
		if err := st.EnsureFile(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure %s: %w", cfg.UsersFile, err)
		}
		sugar.Infow("using file document store", "path", st.Path())
		return st, func() {}, nil
	}
}
