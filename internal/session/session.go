// Package session wires one running mission: world, scripts, sound logic,
// companion and audio, ticked by a phase-ordered runner.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/audio"
	"github.com/icbgo/icb/internal/companion"
	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/core/event"
	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/data"
	"github.com/icbgo/icb/internal/handler"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/nav"
	"github.com/icbgo/icb/internal/scripting"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/system"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// ErrHalted is returned by Tick once a fatal error has stopped the session.
var ErrHalted = errors.New("session halted")

// Assets are the static files a session is built from.
type Assets struct {
	Level     *data.Level
	Subtitles *data.SubtitleTable
	Sfx       *data.SfxTable
}

// LoadAssets reads the level, subtitle and sfx files named by cfg. Missing
// subtitle or sfx files leave those tables empty.
func LoadAssets(cfg config.SessionConfig, log *zap.Logger) (*Assets, error) {
	level, err := data.LoadLevel(cfg.LevelPath)
	if err != nil {
		return nil, err
	}
	a := &Assets{Level: level}
	if cfg.SubtitlesPath != "" {
		if a.Subtitles, err = data.LoadSubtitles(cfg.SubtitlesPath); err != nil {
			log.Warn("subtitles not loaded", zap.Error(err))
		}
	}
	if cfg.SfxPath != "" {
		if a.Sfx, err = data.LoadSfxTable(cfg.SfxPath); err != nil {
			log.Warn("sfx table not loaded", zap.Error(err))
		}
	}
	return a, nil
}

// Session owns every per-mission component. Nothing is process-global, so
// several sessions can coexist (tests build one each).
type Session struct {
	cfg    *config.Config
	assets *Assets
	log    *zap.Logger
	store  Store

	World    *world.State
	Bus      *event.Bus
	Sound    *sound.Logic
	Engine   *scripting.Engine
	Walker   *nav.Walker
	Sight    *nav.Sight
	Anim     *anim.Player
	Chi      *companion.AI
	Audio    *audio.Mixer
	Registry *mcode.Registry
	History  *system.PlayerHistorySystem

	runner  *coresys.Runner
	extra   []coresys.System
	haltErr error
}

// New builds a session and runs the mission's init. store may be nil when
// saving is not wanted.
func New(cfg *config.Config, assets *Assets, store Store, log *zap.Logger) (*Session, error) {
	s := &Session{cfg: cfg, assets: assets, store: store, log: log.Named("session"), Bus: event.NewBus()}
	if err := s.build(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// build wires components in dependency order. Scripts are bound after every
// opcode is registered and run after the level's floor links are in place.
func (s *Session) build() error {
	cfg, lvl := s.cfg, s.assets.Level
	s.haltErr = nil

	// 1. World
	s.World = world.NewState(lvl.BuildFloors())
	if err := lvl.Populate(s.World); err != nil {
		return fmt.Errorf("populate level %q: %w", lvl.Name, err)
	}
	s.Bus.Reset()

	// 2. Scripting VM
	s.Engine = scripting.NewEngine(s.World, s.log.Named("lua"))

	// 3. Sound logic and playback
	s.Sound = sound.NewLogic(s.World, cfg.Sound, s.assets.Subtitles, s.Bus, s.log)
	s.Audio = audio.NewMixer(s.Sound.Model, cfg.Audio, s.log)

	// 4. Movement, sight and animation black boxes
	s.Walker = nav.NewWalker(s.World, cfg.Companion, s.log.Named("nav"))
	s.Sight = nav.NewSight(s.World)
	s.Anim = anim.NewPlayer(lvl.AnimFrames())

	// 5. Companion
	gun := handler.NewGunfire(s.World, s.Sound, s.Audio, s.assets.Sfx, s.log.Named("gun"))
	s.Chi = companion.New(cfg.Companion, companion.Deps{
		World:   s.World,
		Paths:   s.Walker,
		Sight:   s.Sight,
		Anim:    s.Anim,
		Sockets: s.Engine,
		Gun:     gun,
		Hearing: s.Sound.Hearing,
		Bus:     s.Bus,
		Rand:    rand.New(rand.NewSource(cfg.Session.Seed)),
		Log:     s.log,
	})
	s.History = system.NewPlayerHistorySystem(s.World, s.log.Named("history"))

	// 6. Opcodes
	s.Registry = mcode.NewRegistry(s.log.Named("mcode"))
	handler.RegisterAll(s.Registry, &handler.Deps{
		Config:  cfg,
		Log:     s.log.Named("handler"),
		World:   s.World,
		Sound:   s.Sound,
		Chi:     s.Chi,
		Sight:   s.Sight,
		Gun:     gun,
		History: s.History,
		Audio:   s.Audio,
		Sfx:     s.assets.Sfx,
	})

	// 7. Scripts
	s.Engine.Bind(s.Registry)
	if err := s.Engine.Load(cfg.Session.ScriptsDir); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}

	// 8. Level floor links, then mission init
	for _, l := range lvl.FloorLinks {
		if err := s.Sound.Model.LinkFloors(l[0], l[1]); err != nil {
			return fmt.Errorf("level %q: %w", lvl.Name, err)
		}
	}
	if err := s.Engine.Init(); err != nil {
		return fmt.Errorf("mission init: %w", err)
	}
	if err := s.registerLevelCompanion(); err != nil {
		return err
	}

	// 9. Systems
	s.runner = coresys.NewRunner()
	s.runner.Register(system.NewEventDispatchSystem(s.Bus))
	s.runner.Register(s.History)
	s.runner.Register(system.NewScriptSystem(s.Engine, s.runner.Ticks, s.Halt))
	s.runner.Register(system.NewCompanionAISystem(s.Chi, s.Engine, s.log.Named("chi")))
	s.runner.Register(system.NewSoundLogicSystem(s.Sound.Router))
	s.runner.Register(system.NewAudioSystem(s.Audio))
	if s.store != nil && cfg.Session.AutosaveTicks > 0 {
		s.runner.Register(system.NewAutosaveSystem(s, cfg.Session.AutosaveTicks, s.log.Named("autosave")))
	}
	for _, sys := range s.extra {
		s.runner.Register(sys)
	}

	s.log.Info("session ready",
		zap.String("level", lvl.Name),
		zap.Int("objects", s.World.ObjectCount()),
		zap.Int("floors", s.World.Floors().Len()),
		zap.Int("opcodes", len(s.Registry.Names())),
		zap.Bool("companion", s.Chi.Registered()))
	return nil
}

// registerLevelCompanion registers the level's named companion if the
// mission's init didn't register one itself.
func (s *Session) registerLevelCompanion() error {
	name := s.assets.Level.Companion
	if name == "" || s.Chi.Registered() {
		return nil
	}
	o := s.World.ByName(name)
	if o == nil {
		return fmt.Errorf("companion %q: %w", name, world.ErrBadObject)
	}
	if err := s.Chi.Register(o.ID); err != nil {
		return fmt.Errorf("companion %q: %w", name, err)
	}
	return nil
}

// AddSystem registers an extra system (journal, test counters) that survives Reset.
func (s *Session) AddSystem(sys coresys.System) {
	s.extra = append(s.extra, sys)
	s.runner.Register(sys)
}

// Tick advances the session by one game tick.
func (s *Session) Tick(dt time.Duration) error {
	if s.haltErr != nil {
		return fmt.Errorf("%w: %v", ErrHalted, s.haltErr)
	}
	s.runner.Tick(dt)
	if s.haltErr != nil {
		return fmt.Errorf("%w: %v", ErrHalted, s.haltErr)
	}
	return nil
}

// Ticks counts ticks since the session (or its last restore) started.
func (s *Session) Ticks() uint32 { return s.runner.Ticks() }

// Halt stops the session after a fatal error. The first error wins.
func (s *Session) Halt(err error) {
	if s.haltErr != nil {
		return
	}
	s.haltErr = err
	s.log.Error("session halted", zap.Error(err))
}

// Err returns the error that halted the session, if any.
func (s *Session) Err() error { return s.haltErr }

// Reset rebuilds the session from its assets, as if newly loaded. Extra
// systems and bus subscribers stay.
func (s *Session) Reset() error {
	s.Engine.Close()
	return s.build()
}

// Save writes the session to the store's configured slot.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("save: no store configured")
	}
	snap := s.Snapshot()
	if err := s.store.Save(ctx, s.cfg.Session.SaveSlot, snap.Level, snap.Tick, encode(snap)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load restores the session from the store's configured slot.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return errors.New("load: no store configured")
	}
	image, err := s.store.Load(ctx, s.cfg.Session.SaveSlot)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	snap, err := decode(image)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return s.Restore(snap)
}

// Close releases the Lua VM.
func (s *Session) Close() {
	if s.Engine != nil {
		s.Engine.Close()
	}
}
