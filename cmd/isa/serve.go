package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/atmosphere/internal/api"
	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/db"
	"github.com/banshee-data/atmosphere/internal/rpc"
)

func handleServe(args []string) error {
	fs, cfgPath := newFlagSet("serve")
	listen := fs.String("listen", "", "HTTP listen address (default from config)")
	grpcListen := fs.String("grpc-listen", "", "gRPC listen address (default from config, \"off\" to disable)")
	dbPath := fs.String("db", "", "Profile database path (default from config, \"off\" to disable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *listen == "" {
		*listen = cfg.GetListen()
	}
	if *grpcListen == "" {
		*grpcListen = cfg.GetGRPCListen()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	model := atmosphere.Standard()

	var store *db.DB
	if *dbPath != "off" {
		store, err = db.NewDB(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	srv := api.NewServer(model, api.Options{
		DB:          store,
		Display:     cfg.DisplayUnits(),
		MaxAltitude: cfg.GetMaxAltitude(),
		SampleCount: cfg.GetSampleCount(),
	})
	mux := srv.ServeMux()
	if store != nil {
		if err := store.AttachAdminRoutes(mux); err != nil {
			return err
		}
	}

	var grpcServer *rpc.Listener
	if *grpcListen != "" && *grpcListen != "off" {
		grpcServer, err = rpc.Listen(*grpcListen, rpc.NewServer(model, cfg.GetMaxAltitude(), cfg.GetSampleCount()))
		if err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("HTTP server listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				stop()
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}
		log.Printf("HTTP server routine stopped")
	}()

	if grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			grpcServer.Stop()
		}()
	}

	wg.Wait()
	log.Printf("Graceful shutdown complete")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
