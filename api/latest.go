package api

import (
	"net/http"

	"github.com/rowquery/rowquery-sheets/handler"
)

// LatestHandler is the serverless entry point for /api/latest.
func LatestHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, (*handler.Service).Latest)
}
