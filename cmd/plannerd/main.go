// Command plannerd serves the planner over HTTP and streams plans to
// websocket listeners.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/config"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/server"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "Settings file")
	accessLog := flag.Bool("access-log", true, "Log every HTTP request")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.Open(cfg.DBDialect, cfg.DBDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer st.Close()
	log.Printf("run history: %s (%s)", cfg.DBDSN, cfg.DBDialect)

	rec := store.NewRecorder(st, cfg.LogFlushSize, cfg.LogFlushPeriod, nil)
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(log.New(os.Stderr, "[stream] ", log.LstdFlags))
	go hub.Run(ctx)

	srv := server.New(cfg, st, rec, hub, server.Options{
		AccessLog: *accessLog,
		Planner:   fleet.New(nil),
	})

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(5 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
