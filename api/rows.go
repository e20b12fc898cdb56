package api

import (
	"net/http"

	"github.com/rowquery/rowquery-sheets/handler"
)

// RowsHandler is the serverless entry point for /api/rows.
func RowsHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, (*handler.Service).Paged)
}
