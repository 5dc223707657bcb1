package main // Entry point package

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/config"
    "github.com/iliyamo/hall-occupancy/internal/database"
    "github.com/iliyamo/hall-occupancy/internal/geometry"
    "github.com/iliyamo/hall-occupancy/internal/handler"
    "github.com/iliyamo/hall-occupancy/internal/middleware"
    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/queue"
    "github.com/iliyamo/hall-occupancy/internal/repository"
    "github.com/iliyamo/hall-occupancy/internal/router"
    "github.com/iliyamo/hall-occupancy/internal/service"
    "github.com/iliyamo/hall-occupancy/internal/vision"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments use the environment

    cfg := config.Load()
    visCfg := config.LoadVisionConfig()
    recCfg := config.LoadReconcilerConfig()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil disables cache and rate limiting

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    halls := repository.NewHallRepo(db)
    seats := repository.NewSeatRepo(db)
    sessions := repository.NewSessionRepo(db)
    detections := repository.NewDetectionRepo(db)
    configs := repository.NewConfigRepo(db)

    recCfg = recCfg.ApplyStoredSettings(storedSettings(configs))

    rec := service.NewStoreRecorder(sessions, seats, detections, cfg.HallID)
    tracker := occupancy.NewTracker(occupancy.Config{
        IdleTimeout:     recCfg.IdleTimeout,
        MaxDuration:     recCfg.MaxDuration,
        ConfidenceFloor: recCfg.ConfidenceFloor,
        HistorySize:     recCfg.HistorySize,
        SmoothThreshold: recCfg.SmoothThreshold,
    }, cfg.HallID, rec)

    if err := restoreRegistry(tracker, visCfg, cfg.HallID, halls, seats); err != nil {
        log.Printf("registry restore skipped: %v (calibrate to install one)", err)
    }
    restoreSessions(tracker, sessions, cfg.HallID)

    go func() {
        if err := queue.StartSessionConsumer(); err != nil {
            log.Printf("session consumer stopped: %v", err)
        }
    }()
    go occupancy.RunSweeper(tracker, recCfg.SweepInterval)

    e := echo.New()
    e.HideBanner = true

    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens))
    router.RegisterKiosk(e, handler.NewSessionHandler(users, tracker), rateLimit)
    router.RegisterVision(e, handler.NewVisionHandler(visCfg, cfg.HallID, halls, seats, detections, tracker), cfg.JWTSecret)
    router.RegisterRead(e, handler.NewOccupancyHandler(tracker, sessions, cfg.HallID), cache)
    router.RegisterHalls(e, handler.NewHallHandler(halls, seats), cfg.JWTSecret)
    router.RegisterAdmin(e, handler.NewUserHandler(users), handler.NewConfigHandler(configs), cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s hall=%d)", addr, cfg.Env, cfg.HallID)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

// restoreRegistry rebuilds the tracker's seat registry from the seats
// persisted by the last calibration, so a restart does not force a
// recalibration. Sessions are not restored; the sweep and fresh
// check-ins rebuild live state.
func restoreRegistry(tracker *occupancy.Tracker, visCfg config.VisionConfig, hallID uint64,
    halls *repository.HallRepo, seats *repository.SeatRepo) error {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    hall, err := halls.GetByID(ctx, hallID)
    if err != nil {
        return err
    }
    rows, err := seats.GetByHall(ctx, hallID)
    if err != nil {
        return err
    }
    if len(rows) == 0 {
        return occupancy.ErrNoRegistry
    }

    reg := &vision.Registry{Rows: hall.LayoutRows, Cols: hall.LayoutCols}
    for _, s := range rows {
        if !s.IsActive {
            continue // seat taken out of service by staff
        }
        reg.Seats = append(reg.Seats, vision.Seat{
            Label: s.Label,
            Row:   s.Row,
            Col:   s.Col,
            Box:   geometry.Box{X1: s.X1, Y1: s.Y1, X2: s.X2, Y2: s.Y2},
        })
    }
    cls, err := vision.NewClassifier(vision.ClassifierConfig{
        Strategy:    visCfg.Strategy,
        ExpandScale: visCfg.ExpandScale,
        OverlapFrac: visCfg.OverlapFrac,
        FrameW:      visCfg.FrameWidth,
        FrameH:      visCfg.FrameHeight,
    })
    if err != nil {
        return err
    }
    tracker.SetRegistry(reg, cls)
    log.Printf("registry restored: %d seats (%dx%d layout)", len(reg.Seats), reg.Rows, reg.Cols)
    return nil
}

// restoreSessions adopts still-open session rows into the tracker so
// a restart strands no patron: their check-out keeps working and the
// sweep applies the usual limits. Conflicting rows are only logged;
// the durable rows stay open for staff to inspect.
func restoreSessions(tracker *occupancy.Tracker, sessions *repository.SessionRepo, hallID uint64) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    rows, err := sessions.ListActive(ctx, hallID)
    if err != nil {
        log.Printf("session restore skipped: %v", err)
        return
    }
    if len(rows) == 0 {
        return
    }
    skipped := tracker.AdoptSessions(rows)
    for _, s := range skipped {
        log.Printf("session %d (seat %s, user %d) not adopted: conflicting open session", s.ID, s.SeatLabel, s.UserID)
    }
    log.Printf("restored %d active sessions", len(rows)-len(skipped))
}

// storedSettings reads the operator-editable keys back from the
// configurations table. A missing key is normal; anything else is
// logged and the environment value stays in force.
func storedSettings(configs *repository.ConfigRepo) map[string]string {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    out := map[string]string{}
    keys := []string{
        config.SettingIdleTimeoutMinutes,
        config.SettingMaxSessionHours,
        config.SettingConfidenceFloor,
    }
    for _, key := range keys {
        v, err := configs.Get(ctx, key)
        if err != nil {
            if !errors.Is(err, repository.ErrConfigNotFound) {
                log.Printf("stored setting %s skipped: %v", key, err)
            }
            continue
        }
        out[key] = v
    }
    return out
}
