// Command wharfd runs a single-server IRC daemon: one TCP listener, a pool
// of per-connection reader/writer goroutines, and a single event loop that
// owns the client/channel registry exclusively.
package main

import (
	"flag"
	"log"

	"github.com/wharfd/wharfd/internal/config"
)

func main() {
	log.SetFlags(0)

	configPath := flag.String("config", "", "Path to the configuration file.")
	flag.Parse()

	if *configPath == "" {
		flag.PrintDefaults()
		log.Fatal("a -config file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("unable to load configuration: %s", err)
	}

	srv := newServer(cfg)
	if err := srv.run(); err != nil {
		log.Fatalf("server error: %s", err)
	}

	log.Printf("Server shutdown cleanly.")
}
