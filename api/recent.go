package api

import (
	"net/http"

	"github.com/rowquery/rowquery-sheets/handler"
)

// RecentHandler is the serverless entry point for /api/recent.
func RecentHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, (*handler.Service).Recent)
}
