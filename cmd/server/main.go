package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	httpadapter "nearbyradar/internal/adapter/http"
	metricsinmem "nearbyradar/internal/adapter/metrics/inmemory"
	"nearbyradar/internal/adapter/notify"
	gormrepo "nearbyradar/internal/adapter/repo/gorm"
	"nearbyradar/internal/adapter/repo/memory"
	sqliterepo "nearbyradar/internal/adapter/repo/sqlite"
	wstransport "nearbyradar/internal/adapter/transport/ws"
	"nearbyradar/internal/app/panel"
	"nearbyradar/internal/config"
	"nearbyradar/internal/domain/estate"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func main() {
	configPath := flag.String("config", envOr("RADAR_CONFIG", "radar.yaml"), "config file (yaml or toml); missing is fine")
	issueTTL := flag.Duration("issue-token", 0, "print an operator token valid for this long and exit")
	regionAddr := flag.String("region-listen", "", "also accept region connections on this address and log received requests")
	flag.Parse()

	logger := hlog.DefaultLogger()
	cfgStore, err := config.Load(*configPath, logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := cfgStore.Current()

	if *issueTTL > 0 {
		token, err := issueOperatorToken(cfg.HTTP.JWTSecret, *issueTTL, time.Now())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}
	cfgStore.Watch()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := memory.LoadScenarioFile(cfg.World.Scenario)
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}
	kpi := metricsinmem.NewRecorder()
	sender := wstransport.NewSender(wstransport.Config{
		Path:        cfg.Transport.Path,
		DialTimeout: cfg.Transport.DialTimeout,
		Logger:      logger,
		Metrics:     kpi,
	})

	deps, closers, err := buildDeps(ctx, cfg, store)
	if err != nil {
		log.Fatal(err)
	}
	deps.Sender = sender
	deps.Settings = cfgStore
	deps.Metrics = kpi
	deps.Logger = logger
	p := panel.New(deps)
	go p.Run(ctx)

	if *regionAddr != "" {
		go serveRegion(*regionAddr, logger)
	}

	h := httpadapter.Handler{
		Panel:        p,
		Sightings:    deps.Sightings,
		Dispatches:   deps.DispatchLog,
		KPI:          kpi,
		JWTSecret:    cfg.HTTP.JWTSecret,
		AllowOrigins: cfg.HTTP.CORSOrigins,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTP.Addr))
	h.RegisterRoutes(s)
	s.OnShutdown = append(s.OnShutdown, func(context.Context) {
		cancel()
		sender.Close()
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warnf("shutdown: %v", err)
			}
		}
	})

	if cfg.HTTP.JWTSecret == "" {
		logger.Warnf("http.jwt_secret is empty, /api/radar is unauthenticated")
	}
	logger.Infof("nearbyradar listening on %s (scenario %s)", cfg.HTTP.Addr, cfg.World.Scenario)
	s.Spin()
}

// buildDeps picks the persistent adapters named in cfg and falls back to the
// scenario store for everything else.
func buildDeps(ctx context.Context, cfg config.Config, store *memory.Store) (panel.Deps, []func() error, error) {
	deps := panel.Deps{
		World:       memory.NewWorld(store),
		Parcels:     memory.NewParcels(store),
		Mutes:       memory.NewMuteRepo(store),
		Friends:     memory.NewFriends(store),
		Privacy:     memory.NewPrivacyPolicy(store),
		Social:      memory.NewSocial(store),
		Tx:          memory.NewTxManager(),
		Sightings:   memory.NewSightingRepo(store),
		DispatchLog: memory.NewDispatchLogRepo(store),
	}
	var closers []func() error

	if dsn := strings.TrimSpace(cfg.DB.PostgresDSN); dsn != "" {
		db, err := gormrepo.OpenAndMigrate(ctx, dsn)
		if err != nil {
			return deps, nil, fmt.Errorf("open postgres: %w", err)
		}
		deps.Mutes = gormrepo.NewMuteRepo(db)
		deps.DispatchLog = gormrepo.NewDispatchLogRepo(db)
		deps.Tx = gormrepo.NewTxManager(db)
	}
	if path := strings.TrimSpace(cfg.DB.SQLitePath); path != "" {
		repo, err := sqliterepo.Open(path)
		if err != nil {
			return deps, nil, fmt.Errorf("open sqlite: %w", err)
		}
		deps.Sightings = repo
		closers = append(closers, repo.Close)
	}

	chat := notify.ChatNotifier{}
	if dir := strings.TrimSpace(cfg.Notify.LogDir); dir != "" {
		w := notify.NewJSONLWriter(dir, "system")
		chat.Sinks = append(chat.Sinks, w)
		closers = append(closers, w.Close)
	}
	deps.Notifier = chat
	return deps, closers, nil
}

func issueOperatorToken(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("http.jwt_secret is not set")
	}
	return httpadapter.IssueToken([]byte(secret), "operator", ttl, now)
}

func serveRegion(addr string, logger hlog.FullLogger) {
	rc := &wstransport.Receiver{
		Logger: logger,
		Handle: func(remote string, req estate.Request) {
			logger.Infof("region: %s from %s target=%s invoice=%s", req.Operation(), remote, req.TargetID, req.Invoice)
		},
	}
	logger.Infof("region endpoint listening on %s", addr)
	if err := http.ListenAndServe(addr, rc); err != nil {
		logger.Errorf("region endpoint: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
