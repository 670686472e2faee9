package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/rotation-trader/internal/clients/broker"
	"github.com/aristath/rotation-trader/internal/clients/marketdata"
	"github.com/aristath/rotation-trader/internal/config"
	"github.com/aristath/rotation-trader/internal/database"
	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/events"
	"github.com/aristath/rotation-trader/internal/modules/performance"
	strategyconfig "github.com/aristath/rotation-trader/internal/modules/planning/config"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
	"github.com/aristath/rotation-trader/internal/modules/rebalancing"
	"github.com/aristath/rotation-trader/internal/modules/scoring"
	"github.com/aristath/rotation-trader/internal/modules/trading"
	"github.com/aristath/rotation-trader/internal/modules/universe"
	"github.com/aristath/rotation-trader/internal/scheduler"
	"github.com/aristath/rotation-trader/internal/server"
	"github.com/aristath/rotation-trader/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Rotation Trader")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Re-level once the configured level is known
	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Strategy policy is loaded once and immutable afterwards
	strategyLoader := strategyconfig.NewLoader(log)
	strategy, err := strategyLoader.LoadFromFile(cfg.StrategyConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load strategy configuration")
	}

	// Repositories
	securityRepo := universe.NewSecurityRepository(db.Conn(), log)
	candleRepo := universe.NewCandleRepository(db.Conn(), log)
	positionRepo := portfolio.NewPositionRepository(db.Conn(), log)
	accountRepo := portfolio.NewAccountRepository(db.Conn(), log)
	tradeRepo := trading.NewTradeRepository(db.Conn(), log)

	if err := securityRepo.EnsureUniverse(strategy.Universe); err != nil {
		log.Fatal().Err(err).Msg("Failed to synchronize universe")
	}
	if err := accountRepo.EnsureCash(cfg.InitialCapital); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed account")
	}

	// Services
	eventManager := events.NewManager(log)
	marketClient := marketdata.NewClient(cfg.MarketDataURL, log)
	syncService := universe.NewSyncService(securityRepo, candleRepo, marketClient, eventManager, strategy.Schedule.LookbackDays, log)
	scoringService := scoring.NewService(candleRepo, strategy.Scoring, log)
	portfolioService := portfolio.NewService(positionRepo, accountRepo, candleRepo, log)
	performanceService := performance.NewService(accountRepo, log)
	signalAdapter := trading.NewSignalAdapter(candleRepo, log)

	var executor trading.Executor
	if cfg.Mode == domain.ContextLive {
		brokerClient := broker.NewClient(cfg.BrokerURL, cfg.BrokerAPIKey, log)
		executor = trading.NewBrokerExecutor(brokerClient, positionRepo, accountRepo, tradeRepo, log)
		log.Info().Msg("Live mode: orders route through the broker gateway")
	} else {
		executor = trading.NewLedgerExecutor(positionRepo, accountRepo, tradeRepo, log)
		log.Info().Msg("Backtest mode: orders settle against the local ledger")
	}

	rebalancer := rebalancing.NewService(
		strategy,
		scoringService,
		portfolioService,
		accountRepo,
		signalAdapter,
		executor,
		eventManager,
		log,
	)

	// Scheduler: sync candles before the daily rebalance tick
	sched := scheduler.New(log)
	if err := sched.AddJob("0 15 * * MON-FRI", universe.NewSyncJob(syncService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register candle sync job")
	}
	if err := sched.AddJob("30 15 * * MON-FRI", rebalancing.NewJob(rebalancer, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rebalance job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		Rebalancer:  rebalancer,
		Portfolio:   portfolioService,
		Performance: performanceService,
		Trades:      tradeRepo,
		DevMode:     cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("mode", string(cfg.Mode)).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
