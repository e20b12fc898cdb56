package handler

import (
	"github.com/rowquery/rowquery-sheets/query"
	"github.com/rowquery/rowquery-sheets/rows"
)

// Envelope is the response for the 'latest' and 'recent' endpoints and for
// limit=all requests.
type Envelope struct {
	OK        bool        `json:"ok"`
	Rows      rows.RowSet `json:"rows"`
	TotalRows int         `json:"totalRows"`
}

// ModeEnvelope is the response for a legacy limit request to the paged endpoint.
type ModeEnvelope struct {
	OK        bool        `json:"ok"`
	Rows      rows.RowSet `json:"rows"`
	TotalRows int         `json:"totalRows"`
	Mode      query.Mode  `json:"mode"`
}

// PagedEnvelope is the response for a paged request. NextOffset is serialized as
// null on the last page.
type PagedEnvelope struct {
	OK         bool        `json:"ok"`
	Rows       rows.RowSet `json:"rows"`
	TotalRows  int         `json:"totalRows"`
	Mode       query.Mode  `json:"mode"`
	Offset     int         `json:"offset"`
	PageSize   int         `json:"pageSize"`
	NextOffset *int        `json:"nextOffset"`
	HasMore    bool        `json:"hasMore"`
}

type errorBody struct {
	Error string `json:"error"`
}
