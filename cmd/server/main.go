// main wires high-level dependencies: stores, services, the audit pipeline,
// and the HTTP server lifecycle. Business logic lives in internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"meridian/internal/audit"
	"meridian/internal/compliance"
	compliancehandler "meridian/internal/compliance/handler"
	compliancemetrics "meridian/internal/compliance/metrics"
	compliancestore "meridian/internal/compliance/store"
	"meridian/internal/deployment"
	deploymenthandler "meridian/internal/deployment/handler"
	deploymentmetrics "meridian/internal/deployment/metrics"
	deploymentstore "meridian/internal/deployment/store"
	"meridian/internal/platform/config"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/kafka"
	"meridian/internal/platform/logger"
	platformmetrics "meridian/internal/platform/metrics"
	redisclient "meridian/internal/platform/redis"
	"meridian/internal/registry"
	registryhandler "meridian/internal/registry/handler"
	registrystore "meridian/internal/registry/store"
	"meridian/internal/residency"
	residencyhandler "meridian/internal/residency/handler"
	residencymetrics "meridian/internal/residency/metrics"
	residencystore "meridian/internal/residency/store"
	"meridian/internal/routing"
	routinghandler "meridian/internal/routing/handler"
	routingmetrics "meridian/internal/routing/metrics"
	routingstore "meridian/internal/routing/store"
	httptransport "meridian/internal/transport/http"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditstore "meridian/pkg/platform/audit/store/postgres"
	auditworker "meridian/pkg/platform/audit/worker"
	txcontext "meridian/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres ping failed", "error", err)
		os.Exit(1)
	}

	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	// Audit pipeline: fail-closed outbox writes on the request path, a poller
	// draining the outbox into Kafka off it.
	outbox := auditstore.New(db)
	publisher := compliancepub.New(outbox,
		compliancepub.WithLogger(log),
		compliancepub.WithMetrics(compliancepub.NewMetrics()),
	)
	auditor := audit.NewDecisionAuditor(publisher)
	worker := auditworker.New(outbox, producer, log)

	runner := txcontext.NewSQLRunner(db)

	residencySvc := residency.NewService(
		residencystore.NewPostgres(db, cfg.RuleCeiling), auditor, log,
		residency.WithMetrics(residencymetrics.New()),
		residency.WithTx(runner),
	)
	registrySvc := registry.NewService(
		registrystore.NewPostgres(db), auditor, log,
		registry.WithTx(runner),
	)
	deploymentSvc := deployment.NewService(
		deploymentstore.NewPostgres(db), auditor, log,
		deployment.WithMetrics(deploymentmetrics.New()),
		deployment.WithTx(runner),
	)
	routingSvc := routing.NewService(
		routingstore.NewPostgres(db), deploymentSvc, registrySvc, auditor, log,
		routing.WithMetrics(routingmetrics.New()),
		routing.WithTx(runner),
	)

	complianceOpts := []compliance.Option{
		compliance.WithMetrics(compliancemetrics.New()),
		compliance.WithTx(runner),
	}
	if rdb != nil {
		complianceOpts = append(complianceOpts,
			compliance.WithCache(compliance.NewRedisCache(rdb, cfg.ComplianceCacheTTL)))
	}
	complianceSvc := compliance.NewService(compliancestore.NewPostgres(db), auditor, log, complianceOpts...)

	router := httptransport.NewRouter(httptransport.Handlers{
		Residency:  residencyhandler.New(residencySvc, log),
		Routing:    routinghandler.New(routingSvc, log),
		Registry:   registryhandler.New(registrySvc, log),
		Deployment: deploymenthandler.New(deploymentSvc, log),
		Compliance: compliancehandler.New(complianceSvc, log),
	}, log, platformmetrics.New(), cfg.JWTSigningKey, func() error {
		return db.Ping()
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting meridian", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
