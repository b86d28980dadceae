package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Ryan-Ardito/raytracer/pkg/config"
	"github.com/Ryan-Ardito/raytracer/pkg/publish"
	"github.com/Ryan-Ardito/raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port to serve on (overrides RAYTRACER_ADDRESS)")
	envFile := flag.String("env", ".env", "Environment file to load")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.ServerAddress = fmt.Sprintf(":%d", *port)
	}

	var publisher server.Publisher
	s3Publisher, err := publish.NewS3Publisher(cfg, log.Default())
	switch {
	case err == nil:
		publisher = s3Publisher
		log.Printf("Publishing renders to bucket %s", cfg.S3Bucket)
	case errors.Is(err, publish.ErrNotConfigured):
		log.Printf("S3 not configured, uploads disabled")
	default:
		log.Fatalf("Failed to set up S3 publishing: %v", err)
	}

	webServer := server.NewServer(cfg, publisher)

	log.Printf("Raytracer Web Server")
	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
