package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"subhub/api"
	"subhub/config"
	"subhub/handlers"
	"subhub/services/sources"
	"subhub/services/subtitles"
	"subhub/utils"

	"github.com/gorilla/mux"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 subhub Starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("SUBHUB_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	logFile, err := utils.TeeLog(settings.Log)
	if err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	} else {
		defer logFile.Close()
		if settings.Log.File != "" {
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	registry := sources.RegistryFromSettings(settings)
	if registry.Len() == 0 {
		log.Printf("warning: no subtitle sources enabled; searches will return no results")
	}
	subtitleService := subtitles.NewService(registry)
	subtitlesHandler := handlers.NewSubtitlesHandler(subtitleService, settings.API)

	var r *mux.Router = utils.NewRouter()
	api.Register(r, subtitlesHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s with sources %v\n", addr, registry.Names())

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, draining requests...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
