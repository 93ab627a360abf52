package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/app"
	"github.com/thep200/git2neo/internal/ui"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port for the UI server to listen on")
	readOnly := flag.Bool("read-only", false, "Disable the crawl control routes")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	a, err := app.New(ctx, loader)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()
	loader.RegisterConfigChangeCallback(func(c *cfg.Config) {
		a.Logger.Notice(ctx, "Config file changed; crawl settings apply after restart (store driver %s)", c.Store.Driver)
	})

	crawlerAPI := a.CrawlerAPI()
	if *readOnly {
		crawlerAPI = nil
	}

	// Create and run the server
	server, err := ui.NewServer(a.Logger, a.Config, a.Store, crawlerAPI, *port)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			a.Logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop

	if crawlerAPI != nil {
		_, _ = crawlerAPI.StopCrawling()
		crawlerAPI.Wait()
	}

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := server.Stop(shutdownCtx); err != nil {
		a.Logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	a.Logger.Info(ctx, "Server shut down gracefully")
}
