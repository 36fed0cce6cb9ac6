package main

import (
	"context"
	"flag"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sim "hollowmarch/sim"
	"hollowmarch/sim/catalog"
	simloop "hollowmarch/sim/internal/sim"
	"hollowmarch/sim/internal/telemetry"
	"hollowmarch/sim/logging"
	"hollowmarch/sim/logging/sinks"
)

func main() {
	var (
		addr     = flag.String("addr", "", "observer websocket listen address (empty disables)")
		unitsDir = flag.String("units", "", "directory of unit catalog YAML files")
		seed     = flag.String("seed", "", "deterministic world seed")
		tickRate = flag.Int("tick-rate", 30, "simulation ticks per second")
		duration = flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
		watch    = flag.Bool("watch", false, "hot-reload the catalog when files change")
		jsonLog  = flag.String("log-json", "", "append JSON event log to this file")
	)
	flag.Parse()

	logCfg := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, logCfg.Console)},
	}
	if *jsonLog != "" {
		f, err := os.OpenFile(*jsonLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open json log: %v", err)
		}
		defer f.Close()
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "json")
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(f, logCfg.JSON.FlushInterval)})
	}
	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, named)
	if err != nil {
		log.Fatalf("logging router: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	library, err := loadLibrary(*unitsDir)
	if err != nil {
		log.Fatalf("unit catalog: %v", err)
	}

	metrics := logging.NewMetrics()
	deps := simloop.Deps{
		Logger:    telemetry.WrapLogger(log.Default()),
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: router,
		Clock:     logging.SystemClock{},
	}

	world := sim.NewWorld(sim.WorldConfig{Seed: *seed}, library, nil, deps)

	var hub *sim.ObserverHub
	if *addr != "" {
		hub = sim.NewObserverHub(deps.Logger)
		defer hub.Close()
	}

	loop := simloop.NewLoop(world, simloop.LoopConfig{
		TickRate:        *tickRate,
		CatchupMaxTicks: 4,
		CommandCapacity: 256,
		PerSourceLimit:  32,
		WarningStep:     64,
	}, simloop.LoopHooks{
		AfterStep: func(result simloop.StepResult) {
			if hub != nil {
				hub.Broadcast(world.Snapshot())
			}
			for _, ev := range world.DrainEvents() {
				log.Printf("event tick=%d kind=%s agent=%s type=%s", ev.Tick, ev.Kind, ev.AgentID, ev.UnitType)
			}
		},
	})

	stop := make(chan struct{})
	go loop.Run(stop)

	if *watch && *unitsDir != "" {
		watcher, err := catalog.NewWatcher(*unitsDir)
		if err != nil {
			log.Fatalf("catalog watcher: %v", err)
		}
		defer watcher.Close()
		go reloadOnChange(watcher, *unitsDir, library)
	}

	if *addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", hub.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		go func() {
			log.Printf("observer listening on %s", *addr)
			if err := http.ListenAndServe(*addr, mux); err != nil {
				log.Fatalf("observer server: %v", err)
			}
		}()
	}

	go driveScenario(loop, library, *tickRate)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	if *duration > 0 {
		select {
		case <-sigs:
		case <-time.After(*duration):
		}
	} else {
		<-sigs
	}
	close(stop)
	log.Printf("shutting down after tick %d", world.Tick())
	counters, gauges := metrics.Snapshot()
	for k, v := range counters {
		log.Printf("counter %s=%d", k, v)
	}
	for k, v := range gauges {
		log.Printf("gauge %s=%d", k, v)
	}
	for kind, n := range loop.DroppedCommands() {
		log.Printf("dropped %s=%d", kind, n)
	}
}

func loadLibrary(dir string) (*catalog.Library, error) {
	if dir != "" {
		return catalog.LoadDir(dir)
	}
	return catalog.NewLibrary(builtinUnits())
}

// builtinUnits is the demo roster used when no catalog directory is given.
func builtinUnits() []catalog.Config {
	return []catalog.Config{
		{ID: "militia", DisplayName: "Militia", Cost: 10},
		{
			ID:              "archer",
			DisplayName:     "Archer",
			MaxHealth:       60,
			Damage:          14,
			AttackSpeed:     0.8,
			AttackRange:     220,
			Ranged:          true,
			ProjectileSpeed: 420,
			ArcHeight:       48,
			Cost:            15,
		},
		{ID: "raider", DisplayName: "Raider", MaxHealth: 80, Damage: 12, MoveSpeed: 140},
	}
}

// driveScenario issues a scripted skirmish: a wandering leader, a small
// escort, and periodic enemy raids.
func driveScenario(loop *simloop.Loop, library *catalog.Library, tickRate int) {
	enqueue := func(cmd simloop.Command) {
		cmd.Source = "scenario"
		cmd.IssuedAt = time.Now()
		if ok, reason := loop.Enqueue(cmd); !ok {
			log.Printf("scenario command dropped: %s", reason)
		}
	}

	enqueue(simloop.Command{
		Type:   simloop.CommandLeaderMove,
		Leader: &simloop.LeaderMoveCommand{X: 1200, Y: 800},
	})
	for i := 0; i < 4; i++ {
		enqueue(simloop.Command{
			Type:  simloop.CommandSpawnUnit,
			Spawn: &simloop.SpawnCommand{UnitType: "militia"},
		})
	}
	enqueue(simloop.Command{
		Type:  simloop.CommandSpawnUnit,
		Spawn: &simloop.SpawnCommand{UnitType: "archer"},
	})

	interval := time.Second / time.Duration(tickRate)
	leaderTicker := time.NewTicker(interval)
	raidTicker := time.NewTicker(8 * time.Second)
	defer leaderTicker.Stop()
	defer raidTicker.Stop()

	start := time.Now()
	for {
		select {
		case <-leaderTicker.C:
			t := time.Since(start).Seconds() * 0.2
			enqueue(simloop.Command{
				Type: simloop.CommandLeaderMove,
				Leader: &simloop.LeaderMoveCommand{
					X: 1200 + 400*math.Cos(t),
					Y: 800 + 260*math.Sin(t),
				},
			})
		case <-raidTicker.C:
			for i := 0; i < 3; i++ {
				enqueue(simloop.Command{
					Type:  simloop.CommandSpawnEnemy,
					Spawn: &simloop.SpawnCommand{UnitType: "raider"},
				})
			}
		}
	}
}

// reloadOnChange reinstalls every catalog entry after a file change. Future
// spawns pick up the retuned stats; live agents keep the config they spawned
// with.
func reloadOnChange(watcher *catalog.Watcher, dir string, library *catalog.Library) {
	for {
		select {
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			fresh, err := catalog.LoadDir(dir)
			if err != nil {
				log.Printf("catalog reload failed (%s): %v", path, err)
				continue
			}
			for _, id := range fresh.IDs() {
				cfg := fresh.Config(id)
				if cfg == nil {
					continue
				}
				if _, err := library.Replace(*cfg); err != nil {
					log.Printf("catalog reload: %s: %v", id, err)
				}
			}
			log.Printf("catalog reloaded from %s", dir)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("catalog watcher: %v", err)
		}
	}
}
