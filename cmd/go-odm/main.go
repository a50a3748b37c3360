package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/adfharrison1/go-odm/pkg/odm"
	"github.com/adfharrison1/go-odm/pkg/server"
	"github.com/adfharrison1/go-odm/pkg/storage"
)

func main() {
	// Command line flags
	var (
		port           = flag.StringP("port", "p", "8080", "Server port")
		dataFile       = flag.String("data-file", "go-odm_data"+storage.FileExtension, "Data file path for persistence")
		backgroundSave = flag.Duration("background-save", 0, "Background save interval (e.g., 5m, 30s). Set to 0 to disable.")
		seed           = flag.Bool("seed", false, "Insert a demo article on startup")
		showHelp       = flag.BoolP("help", "h", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ngo-odm serves change-tracked documents over HTTP for inspection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Start with defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --port 9090 --seed       # Custom port with a demo article\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --background-save 5m     # Auto-save every 5 minutes\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	registry, err := odm.NewRegistry(demoClasses()...)
	if err != nil {
		log.Fatalf("ERROR: Invalid schema: %v", err)
	}

	storageOptions := []storage.StorageOption{storage.WithDataFile(*dataFile)}
	if *backgroundSave > 0 {
		storageOptions = append(storageOptions, storage.WithBackgroundSave(*backgroundSave))
		log.Printf("INFO: Background save enabled: every %v", *backgroundSave)
	} else {
		log.Printf("WARN: Background save disabled - data only saved on graceful shutdown")
	}

	srv := server.NewServer(registry, storageOptions...)
	defer srv.StopBackgroundWorkers()

	log.Printf("INFO: Loading data from: %s", *dataFile)
	srv.InitDB(*dataFile)

	if *seed {
		id, err := seedDemo(srv.Context(), srv.Storage())
		if err != nil {
			log.Fatalf("ERROR: Seeding demo data failed: %v", err)
		}
		log.Printf("INFO: Seeded demo article at /collections/articles/documents/%s/debug", id)
	}

	httpServer := &http.Server{
		Addr:    ":" + *port,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("Starting go-odm server on :%s", *port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	log.Printf("INFO: Saving data to: %s", *dataFile)
	srv.SaveDB(*dataFile)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
