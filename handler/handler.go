package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rowquery/rowquery-sheets/auth"
	"github.com/rowquery/rowquery-sheets/config"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/query"
	"github.com/rowquery/rowquery-sheets/rows"
	"github.com/rowquery/rowquery-sheets/telemetry"
)

const REQUEST_ID_HEADER = "X-Request-Id"

// SheetReader fetches the full contents of a sheet.
type SheetReader interface {
	Rows(ctx context.Context, spreadsheet, sheet string) (rows.RowSet, error)
}

// Service holds the immutable per-process state shared by the row endpoints.
type Service struct {
	reader      SheetReader
	apiKey      string
	spreadsheet string
	sheet       string
}

// selection maps the fetched rows onto a response envelope.
type selection func(rows.RowSet) any

type endpoint struct {
	name        string
	methodCheck bool
	parse       func(values url.Values) selection
}

func NewService(cfg *config.Config, reader SheetReader) *Service {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = config.DEFAULT_SHEET
	}

	return &Service{
		reader:      reader,
		apiKey:      cfg.APIKey,
		spreadsheet: cfg.SpreadsheetID,
		sheet:       sheet,
	}
}

// Latest returns either every row (limit=all, the default) or the last 'limit' rows.
func (s *Service) Latest() http.Handler {
	return s.handler(endpoint{
		name:        "latest",
		methodCheck: true,
		parse: func(values url.Values) selection {
			result := query.ParseLimit(values)
			if !result.OK() {
				log.Debugf("latest: invalid query, using limit=all (%v)", result.Err)
			}

			q := result.OrDefault(query.DefaultLimitQuery)

			return func(rs rows.RowSet) any {
				selected := rows.All(rs)
				if q.Mode() == query.LATEST {
					selected = rows.Latest(rs, q.Limit)
				}

				return Envelope{
					OK:        true,
					Rows:      selected,
					TotalRows: len(rs),
				}
			}
		},
	})
}

// Paged returns a window of 'pageSize' rows starting at 'offset', or the last 'limit'
// rows if a legacy limit is supplied.
func (s *Service) Paged() http.Handler {
	return s.handler(endpoint{
		name:        "rows",
		methodCheck: true,
		parse: func(values url.Values) selection {
			result := query.ParsePage(values)
			if !result.OK() {
				log.Debugf("rows: invalid query, using defaults (%v)", result.Err)
			}

			q := result.OrDefault(query.DefaultPageQuery)

			return func(rs rows.RowSet) any {
				if q.Mode() == query.LATEST {
					return ModeEnvelope{
						OK:        true,
						Rows:      rows.Latest(rs, *q.Limit),
						TotalRows: len(rs),
						Mode:      query.LATEST,
					}
				}

				page := rows.Paginate(rs, q.Offset, q.PageSize)

				return PagedEnvelope{
					OK:         true,
					Rows:       page.Rows,
					TotalRows:  len(rs),
					Mode:       query.PAGED,
					Offset:     page.Offset,
					PageSize:   page.PageSize,
					NextOffset: page.NextOffset,
					HasMore:    page.HasMore,
				}
			}
		},
	})
}

// Recent returns the last 'limit' rows (default 10). It does not restrict the
// request method.
func (s *Service) Recent() http.Handler {
	return s.handler(endpoint{
		name:        "recent",
		methodCheck: false,
		parse: func(values url.Values) selection {
			result := query.ParseRecent(values)
			if !result.OK() {
				log.Debugf("recent: invalid query, using limit=%v (%v)", query.DEFAULT_RECENT_LIMIT, result.Err)
			}

			q := result.OrDefault(query.DefaultRecentQuery)

			return func(rs rows.RowSet) any {
				return Envelope{
					OK:        true,
					Rows:      rows.Latest(rs, q.Limit),
					TotalRows: len(rs),
				}
			}
		},
	})
}

func (s *Service) handler(e endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(REQUEST_ID_HEADER)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := log.WithRequestID(r.Context(), id)

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set(REQUEST_ID_HEADER, id)

		status := s.serve(ctx, w, r, e)

		log.Request(ctx, "request",
			"endpoint", e.name,
			"method", r.Method,
			"status", status,
			"duration", time.Since(start).String())
	})
}

func (s *Service) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, e endpoint) int {
	if e.methodCheck && r.Method != http.MethodGet {
		return reply(w, http.StatusMethodNotAllowed, errorBody{Error: "Use GET"})
	}

	if check := auth.Check(r.Header, s.apiKey); !check.OK {
		return reply(w, check.Status, check.Body)
	}

	selectRows := e.parse(r.URL.Query())

	rs, err := s.reader.Rows(ctx, s.spreadsheet, s.sheet)
	telemetry.Upstream(err)

	if err != nil {
		log.RequestError(ctx, "spreadsheet read failed", "endpoint", e.name, "error", err)

		return reply(w, http.StatusBadGateway, errorBody{Error: "Upstream failure"})
	}

	return reply(w, http.StatusOK, selectRows(rs))
}

func reply(w http.ResponseWriter, status int, body any) int {
	b, err := json.Marshal(body)
	if err != nil {
		log.Errorf("error encoding response (%v)", err)

		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)

	return status
}

// Unavailable replies to every request with a 500, for use when the service could not
// be configured.
func Unavailable(cause error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		log.Errorf("service unavailable (%v)", cause)
		reply(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	})
}
