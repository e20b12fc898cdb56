package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"github.com/rowquery/rowquery-sheets/config"
	"github.com/rowquery/rowquery-sheets/handler"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/telemetry"
)

var ServeCmd = Serve{
	address: "",
}

// Serve runs the row endpoints as a long lived HTTP server, for local development
// and for hosting outside a serverless platform.
type Serve struct {
	address string
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Serves the row endpoints over HTTP"
}

func (cmd *Serve) Usage() string {
	return "[--address <host:port>]"
}

func (cmd *Serve) Configure(c *cobra.Command) {
	c.Long = "Serves /api/latest, /api/rows and /api/recent along with /healthz and /metrics. Configuration is\n" +
		"read from the environment, after loading a .env file from the working directory if one exists."

	c.Flags().StringVar(&cmd.address, "address", cmd.address, fmt.Sprintf("Listen address. Defaults to HTTP_ADDRESS or %v", config.DEFAULT_HTTP_ADDRESS))
}

func (cmd *Serve) Execute(c *cobra.Command, options *Options) error {
	cfg, err := load(options)
	if err != nil {
		return err
	}

	if cmd.address != "" {
		cfg.HTTP.Address = cmd.address
	}

	r, err := reader(cfg)
	if err != nil {
		return err
	}

	if cfg.APIKey == "" {
		log.Warnf("API_KEY is not set - all row requests will be rejected")
	}

	srv := &http.Server{
		Handler:      Mux(handler.NewService(cfg, r)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	listener, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		return fmt.Errorf("unable to listen on %v (%v)", cfg.HTTP.Address, err)
	}

	listener = netutil.LimitListener(listener, cfg.HTTP.MaxConnections)

	errs := make(chan error, 1)
	go func() {
		log.Infof("Listening on %v", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	// ... CTRL-C handler
	interrupt := make(chan os.Signal, 1)

	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case err := <-errs:
		return err

	case <-interrupt:
		log.Infof("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Mux routes the row endpoints alongside the health and metrics endpoints.
func Mux(s *handler.Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/api/latest", telemetry.Wrap("latest", s.Latest()))
	mux.Handle("/api/rows", telemetry.Wrap("rows", s.Paged()))
	mux.Handle("/api/recent", telemetry.Wrap("recent", s.Recent()))
	mux.Handle("/metrics", telemetry.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	return mux
}
