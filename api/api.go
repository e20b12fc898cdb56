// Package api holds the serverless function entry points. Each exported handler is
// deployed as a separate function and shares a lazily initialised Service.
package api

import (
	"net/http"
	"sync"

	"github.com/rowquery/rowquery-sheets/config"
	"github.com/rowquery/rowquery-sheets/handler"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/spreadsheet"
)

var (
	once    sync.Once
	service *handler.Service
	initErr error
)

func initialise() (*handler.Service, error) {
	once.Do(func() {
		service, initErr = build()
	})

	return service, initErr
}

func build() (*handler.Service, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	log.SetDebug(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader, err := spreadsheet.NewReader(cfg.ClientEmail, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	return handler.NewService(cfg, reader), nil
}

func serve(w http.ResponseWriter, r *http.Request, h func(*handler.Service) http.Handler) {
	s, err := initialise()
	if err != nil {
		handler.Unavailable(err).ServeHTTP(w, r)
		return
	}

	h(s).ServeHTTP(w, r)
}
