// Command server wires the bank integration service: token cache, http
// gateway, bank client, orchestrators, stores, audit trail, and the HTTP
// transport. Business logic lives in the internal packages.
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"banklink/internal/accounts"
	accountsmemory "banklink/internal/accounts/store/memory"
	accountspg "banklink/internal/accounts/store/postgres"
	"banklink/internal/audit"
	auditmemory "banklink/internal/audit/store/memory"
	auditpg "banklink/internal/audit/store/postgres"
	"banklink/internal/bank/client"
	"banklink/internal/bank/token"
	"banklink/internal/events"
	"banklink/internal/gateway"
	"banklink/internal/logging"
	"banklink/internal/onboarding"
	onboardingmemory "banklink/internal/onboarding/store/memory"
	onboardingpg "banklink/internal/onboarding/store/postgres"
	"banklink/internal/platform/config"
	"banklink/internal/platform/httpserver"
	"banklink/internal/platform/kafka"
	"banklink/internal/platform/logger"
	"banklink/internal/platform/metrics"
	"banklink/internal/platform/middleware"
	"banklink/internal/platform/postgres"
	"banklink/internal/platform/redis"
	httptransport "banklink/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(cfg.Logging)
	if err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	m := metrics.New()
	logs := logging.New(log,
		logging.WithSensitiveFields(cfg.Logging.SensitiveFields),
		logging.WithSensitiveData(cfg.Logging.LogSensitiveData),
	)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var cache token.Cache
	if rdb != nil {
		cache = token.NewRedisCache(rdb.Client)
	} else {
		log.Warn("redis not configured, token cache is in-memory")
		cache = token.NewMemoryCache()
	}

	tokenClient, err := token.New(cfg.Bank, cache, logs, token.WithMetrics(m))
	if err != nil {
		return err
	}

	var auditStore audit.Store
	if db != nil {
		auditStore = auditpg.New(db)
	} else {
		auditStore = auditmemory.NewStore()
	}
	recorder, err := audit.NewRecorder(auditStore, cfg.Audit.Enabled, audit.WithMetrics(m))
	if err != nil {
		return err
	}

	gw, err := gateway.New(cfg.Bank, tokenClient, logs, recorder, gateway.WithMetrics(m))
	if err != nil {
		return err
	}

	bankClient, err := client.New(cfg.Bank, tokenClient, logs)
	if err != nil {
		return err
	}

	var sink events.Sink
	publisher, err := kafka.NewPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		sink = publisher
	} else {
		sink = events.NewLogSink(log)
	}

	var (
		onbStore onboarding.Store
		accStore accounts.Store
	)
	if db != nil {
		onbStore = onboardingpg.New(db)
		accStore = accountspg.New(db)
	} else {
		log.Warn("postgres not configured, records are in-memory")
		onbStore = onboardingmemory.NewStore()
		accStore = accountsmemory.NewStore()
	}

	onbService, err := onboarding.New(cfg.Bank, gw, onbStore, recorder, sink, logs)
	if err != nil {
		return err
	}
	accService, err := accounts.New(cfg.Bank, bankClient, accStore, recorder, sink, logs)
	if err != nil {
		return err
	}

	var auth *middleware.InboundAuth
	if cfg.Inbound.APIKeyHash != "" || (cfg.Inbound.RequireSignature && cfg.Inbound.SignatureSecret != "") {
		secret := ""
		if cfg.Inbound.RequireSignature {
			secret = cfg.Inbound.SignatureSecret
		}
		auth = middleware.NewInboundAuth(cfg.Inbound.APIKeyHash, secret)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Onboarding: onbService,
		Accounts:   accService,
		Audit:      recorder,
		Auth:       auth,
		Log:        log,
		Health: func() error {
			if db != nil {
				if err := db.PingContext(context.Background()); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Health(context.Background())
			}
			return nil
		},
	})

	return httpserver.Run(httpserver.New(cfg.Addr, router), log)
}
