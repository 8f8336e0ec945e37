// Package main provides the entry point for hanziportald, a local
// stand-in for a real backend deployment. It serves the portal wire
// protocol from generated in-memory data, which makes it useful for
// development and for pointing hanzictl at without any cloud setup:
//
//	hanziportald -listen :8787
//	hanzictl config set-url http://127.0.0.1:8787/exec
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/hanzihome/portal/internal/portal/fixture"
	"github.com/hanzihome/portal/internal/stubserver"
)

func main() {
	var (
		listen = flag.String("listen", ":8787", "listen address")
		quiet  = flag.Bool("quiet", false, "disable request logging")
	)
	flag.Parse()

	src := fixture.New()

	var logger *log.Logger
	if !*quiet {
		logger = log.Default()
	}
	srv := stubserver.New(src, logger)

	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("hanziportald listening on %s", *listen)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
