package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joelkehle/pharma-forecast/internal/export"
	"github.com/joelkehle/pharma-forecast/internal/httpapi"
	"github.com/joelkehle/pharma-forecast/internal/llm"
	"github.com/joelkehle/pharma-forecast/internal/research"
	"github.com/joelkehle/pharma-forecast/internal/store"
	"github.com/joelkehle/pharma-forecast/internal/telemetry"
	"github.com/joelkehle/pharma-forecast/internal/trials"
)

func main() {
	addr := flag.String("addr", ":8000", "HTTP listen address")
	dbPath := flag.String("db", "pharma.db", "sqlite database path")
	flag.Parse()

	// Local development keeps the OTLP endpoint and similar settings in a
	// .env file; absence is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTelemetry, err := telemetry.Setup(ctx, "pharma-forecast-api")
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	gen := &research.Generator{NewCaller: llm.NewAnthropicCaller}
	handler := httpapi.NewServer(st, gen, trials.NewClient(""), export.NewChromiumRenderer())

	srv := &http.Server{
		Addr:    *addr,
		Handler: handler,
		// Analysis endpoints block on several model calls in sequence, so
		// the write timeout is generous.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	log.Printf("starting pharma-forecast api (addr=%s, db=%s)", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
