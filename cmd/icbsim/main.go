// Command icbsim runs one mission headless: the mission script drives the
// player, the companion follows, and sound events are routed and mixed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/persist"
	"github.com/icbgo/icb/internal/session"
	"github.com/icbgo/icb/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// journalInterval is how many ticks of events are batched per journal write.
const journalInterval = 50

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/icb.toml"
	if p := os.Getenv("ICB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Save store: PostgreSQL when enabled, otherwise files
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		store   session.Store
		journal *persist.JournalRepo
	)
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if _, err := persist.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		store = session.NewDBStore(persist.NewSaveRepo(db))
		journal = persist.NewJournalRepo(db)
		log.Info("saves in database")
	} else {
		store = session.NewFileStore(cfg.Session.SaveDir)
		log.Info("saves in files", zap.String("dir", cfg.Session.SaveDir))
	}

	// 4. Load level assets and build the session
	assets, err := session.LoadAssets(cfg.Session, log)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	sess, err := session.New(cfg, assets, store, log)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer sess.Close()

	if err := sess.Load(ctx); err != nil {
		if !errors.Is(err, persist.ErrNoSave) {
			return err
		}
		log.Info("no save found, starting fresh", zap.String("slot", cfg.Session.SaveSlot))
		if journal != nil {
			// a new game in this slot starts a new journal
			if err := journal.Purge(ctx, cfg.Session.SaveSlot); err != nil {
				return fmt.Errorf("purge journal: %w", err)
			}
		}
	}
	subscribeLogs(sess.Bus, log.Named("event"))

	var journalSys *system.JournalSystem
	if journal != nil {
		journalSys = system.NewJournalSystem(sess.Bus, journal, cfg.Session.SaveSlot, journalInterval, sess.Ticks, log.Named("journal"))
		sess.AddSystem(journalSys)
	}

	// 5. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("mission running",
		zap.String("session", cfg.Session.Name),
		zap.Duration("tick", cfg.Session.TickRate),
		zap.Int("max_ticks", cfg.Session.MaxTicks))

	runErr := loop(sess, cfg.Session, shutdownCh, log)

	// 6. Save on the way out, unless the session broke
	if journalSys != nil {
		journalSys.Flush()
		if n := journalSys.Pending(); n > 0 {
			log.Warn("journal entries not written", zap.Int("entries", n))
		}
	}
	if runErr == nil {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		if err := sess.Save(saveCtx); err != nil {
			log.Error("final save failed", zap.Error(err))
		}
	}
	log.Info("mission stopped", zap.Uint32("ticks", sess.Ticks()))
	return runErr
}

// loop ticks the session until MaxTicks, a signal or a halt. A zero tick
// rate runs as fast as possible.
func loop(sess *session.Session, cfg config.SessionConfig, shutdownCh <-chan os.Signal, log *zap.Logger) error {
	var tickC <-chan time.Time
	if cfg.TickRate > 0 {
		ticker := time.NewTicker(cfg.TickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}
	dt := cfg.TickRate
	if dt == 0 {
		dt = time.Millisecond
	}

	for {
		if tickC != nil {
			select {
			case <-tickC:
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return nil
			}
		} else {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return nil
			default:
			}
		}

		if err := sess.Tick(dt); err != nil {
			return err
		}
		if cfg.MaxTicks > 0 && int(sess.Ticks()) >= cfg.MaxTicks {
			return nil
		}
	}
}

// subscribeLogs mirrors bus events into the log.
func subscribeLogs(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.CompanionModeChanged) {
		log.Info("companion mode",
			zap.String("think", ev.Think),
			zap.String("from", ev.From),
			zap.String("to", ev.To))
	})
	event.Subscribe(bus, func(ev event.CompanionLost) {
		log.Warn("companion lost the player",
			zap.Int32("target", int32(ev.Target)),
			zap.Int("cursor", ev.Cursor))
	})
	event.Subscribe(bus, func(ev event.SoundPosted) {
		log.Debug("sound",
			zap.Uint32("id", ev.Sound),
			zap.Int32("emitter", int32(ev.Emitter)),
			zap.Int("listeners", ev.Listeners))
	})
	event.Subscribe(bus, func(ev event.SubtitleShown) {
		log.Info("subtitle", zap.String("text", ev.Text), zap.Int("ticks", ev.Ticks))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
