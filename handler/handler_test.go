package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/rowquery/rowquery-sheets/config"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/rows"
)

type stub struct {
	rows  rows.RowSet
	err   error
	calls int
}

func (s *stub) Rows(ctx context.Context, spreadsheet, sheet string) (rows.RowSet, error) {
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	return s.rows, nil
}

func makeRowSet(n int) rows.RowSet {
	rs := rows.RowSet{}
	for i := 0; i < n; i++ {
		rs = append(rs, rows.Row{fmt.Sprintf("%v", i)})
	}

	return rs
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)

	os.Exit(m.Run())
}

func setup(n int) (*Service, *stub) {
	reader := &stub{rows: makeRowSet(n)}
	cfg := config.Config{
		APIKey:        "S3cret",
		SpreadsheetID: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		SheetName:     "Sheet1",
	}

	return NewService(&cfg, reader), reader
}

func get(t *testing.T, h http.Handler, method, target, key string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rq := httptest.NewRequest(method, target, nil)
	if key != "" {
		rq.Header.Set("x-api-key", key)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, rq)

	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Incorrect Cache-Control header - expected:%v, got:%v", "no-store", cc)
	}

	body := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response %q (%v)", w.Body.String(), err)
	}

	return w, body
}

func rowIDs(body map[string]any) []string {
	list := []string{}
	for _, r := range body["rows"].([]any) {
		list = append(list, r.([]any)[0].(string))
	}

	return list
}

func span(from, to int) []string {
	list := []string{}
	for i := from; i < to; i++ {
		list = append(list, fmt.Sprintf("%v", i))
	}

	return list
}

func TestLatestWithoutLimit(t *testing.T) {
	s, _ := setup(5)

	w, body := get(t, s.Latest(), http.MethodGet, "/api/latest", "S3cret")

	if w.Code != http.StatusOK {
		t.Fatalf("Incorrect status - expected:%v, got:%v", http.StatusOK, w.Code)
	}

	expected := map[string]any{
		"ok":        true,
		"rows":      []any{[]any{"0"}, []any{"1"}, []any{"2"}, []any{"3"}, []any{"4"}},
		"totalRows": float64(5),
	}

	if !reflect.DeepEqual(body, expected) {
		t.Errorf("Incorrect response\n   expected: %v\n   got:      %v\n", expected, body)
	}
}

func TestLatestWithLimit(t *testing.T) {
	s, _ := setup(20)

	_, body := get(t, s.Latest(), http.MethodGet, "/api/latest?limit=3", "S3cret")

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(17, 20)) {
		t.Errorf("Incorrect rows - expected:%v, got:%v", span(17, 20), ids)
	}

	if body["totalRows"] != float64(20) {
		t.Errorf("Incorrect totalRows - expected:%v, got:%v", 20, body["totalRows"])
	}
}

func TestLatestWithInvalidLimit(t *testing.T) {
	s, _ := setup(7)

	_, body := get(t, s.Latest(), http.MethodGet, "/api/latest?limit=0", "S3cret")

	if ids := rowIDs(body); len(ids) != 7 {
		t.Errorf("Expected fallback to all rows, got %v", ids)
	}
}

func TestLatestWithWrongMethod(t *testing.T) {
	s, reader := setup(5)

	w, body := get(t, s.Latest(), http.MethodPost, "/api/latest", "S3cret")

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Incorrect status - expected:%v, got:%v", http.StatusMethodNotAllowed, w.Code)
	}

	if body["error"] != "Use GET" {
		t.Errorf("Incorrect error - expected:%v, got:%v", "Use GET", body["error"])
	}

	if reader.calls != 0 {
		t.Errorf("Expected no spreadsheet reads, got %v", reader.calls)
	}
}

func TestUnauthorized(t *testing.T) {
	s, reader := setup(5)

	tests := []struct {
		name    string
		handler http.Handler
	}{
		{"latest", s.Latest()},
		{"rows", s.Paged()},
		{"recent", s.Recent()},
	}

	for _, test := range tests {
		for _, key := range []string{"", "WRONG"} {
			w, body := get(t, test.handler, http.MethodGet, "/api/"+test.name, key)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("%v: incorrect status for key '%v' - expected:%v, got:%v", test.name, key, http.StatusUnauthorized, w.Code)
			}

			if !reflect.DeepEqual(body, map[string]any{"error": "Unauthorized"}) {
				t.Errorf("%v: incorrect body for key '%v' - got:%v", test.name, key, body)
			}
		}
	}

	if reader.calls != 0 {
		t.Errorf("Expected no spreadsheet reads, got %v", reader.calls)
	}
}

func TestUnconfiguredAPIKey(t *testing.T) {
	reader := &stub{rows: makeRowSet(5)}
	s := NewService(&config.Config{SpreadsheetID: "x"}, reader)

	w, _ := get(t, s.Latest(), http.MethodGet, "/api/latest", "anything")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Incorrect status - expected:%v, got:%v", http.StatusUnauthorized, w.Code)
	}
}

func TestPagedLastPage(t *testing.T) {
	s, _ := setup(250)

	w, body := get(t, s.Paged(), http.MethodGet, "/api/rows?offset=200&pageSize=100", "S3cret")

	if w.Code != http.StatusOK {
		t.Fatalf("Incorrect status - expected:%v, got:%v", http.StatusOK, w.Code)
	}

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(200, 250)) {
		t.Errorf("Incorrect rows - expected 200..249, got:%v", ids)
	}

	if next, ok := body["nextOffset"]; !ok || next != nil {
		t.Errorf("Expected nextOffset:null, got %v (present:%v)", next, ok)
	}

	expected := map[string]any{
		"mode":      "paged",
		"offset":    float64(200),
		"pageSize":  float64(100),
		"hasMore":   false,
		"totalRows": float64(250),
		"ok":        true,
	}

	for k, v := range expected {
		if body[k] != v {
			t.Errorf("Incorrect '%v' - expected:%v, got:%v", k, v, body[k])
		}
	}
}

func TestPagedFirstPage(t *testing.T) {
	s, _ := setup(250)

	_, body := get(t, s.Paged(), http.MethodGet, "/api/rows?offset=0&pageSize=100", "S3cret")

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(0, 100)) {
		t.Errorf("Incorrect rows - expected 0..99, got:%v", ids)
	}

	if body["nextOffset"] != float64(100) || body["hasMore"] != true {
		t.Errorf("Incorrect pagination - expected nextOffset:100 hasMore:true, got nextOffset:%v hasMore:%v", body["nextOffset"], body["hasMore"])
	}
}

func TestPagedDefaults(t *testing.T) {
	s, _ := setup(150)

	_, body := get(t, s.Paged(), http.MethodGet, "/api/rows", "S3cret")

	if ids := rowIDs(body); len(ids) != 100 {
		t.Errorf("Incorrect default page size - expected:%v, got:%v", 100, len(ids))
	}

	if body["offset"] != float64(0) || body["pageSize"] != float64(100) {
		t.Errorf("Incorrect defaults - got offset:%v pageSize:%v", body["offset"], body["pageSize"])
	}
}

func TestPagedWithInvalidQuery(t *testing.T) {
	s, _ := setup(250)

	_, body := get(t, s.Paged(), http.MethodGet, "/api/rows?offset=50&pageSize=500", "S3cret")

	if body["offset"] != float64(0) || body["pageSize"] != float64(100) {
		t.Errorf("Expected fallback to defaults, got offset:%v pageSize:%v", body["offset"], body["pageSize"])
	}
}

func TestPagedPastEnd(t *testing.T) {
	s, _ := setup(10)

	_, body := get(t, s.Paged(), http.MethodGet, "/api/rows?offset=10", "S3cret")

	if list, ok := body["rows"].([]any); !ok || len(list) != 0 {
		t.Errorf("Expected empty rows array, got %v", body["rows"])
	}

	if body["hasMore"] != false || body["nextOffset"] != nil {
		t.Errorf("Expected hasMore:false nextOffset:null, got hasMore:%v nextOffset:%v", body["hasMore"], body["nextOffset"])
	}
}

func TestPagedWithLegacyLimit(t *testing.T) {
	s, _ := setup(30)

	_, body := get(t, s.Paged(), http.MethodGet, "/api/rows?limit=5&offset=3&pageSize=2", "S3cret")

	if body["mode"] != "latest" {
		t.Errorf("Incorrect mode - expected:%v, got:%v", "latest", body["mode"])
	}

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(25, 30)) {
		t.Errorf("Incorrect rows - expected:%v, got:%v", span(25, 30), ids)
	}

	for _, k := range []string{"offset", "pageSize", "nextOffset", "hasMore"} {
		if _, ok := body[k]; ok {
			t.Errorf("Unexpected '%v' in latest mode response", k)
		}
	}
}

func TestRecentWithInvalidLimit(t *testing.T) {
	s, _ := setup(50)

	_, body := get(t, s.Recent(), http.MethodGet, "/api/recent?limit=abc", "S3cret")

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(40, 50)) {
		t.Errorf("Incorrect rows - expected:%v, got:%v", span(40, 50), ids)
	}
}

func TestRecentIgnoresMethod(t *testing.T) {
	s, _ := setup(50)

	w, body := get(t, s.Recent(), http.MethodPost, "/api/recent?limit=4", "S3cret")

	if w.Code != http.StatusOK {
		t.Errorf("Incorrect status - expected:%v, got:%v", http.StatusOK, w.Code)
	}

	if ids := rowIDs(body); !reflect.DeepEqual(ids, span(46, 50)) {
		t.Errorf("Incorrect rows - expected:%v, got:%v", span(46, 50), ids)
	}
}

func TestUpstreamFailure(t *testing.T) {
	s, reader := setup(0)
	reader.err = fmt.Errorf("quota exceeded")

	w, body := get(t, s.Latest(), http.MethodGet, "/api/latest", "S3cret")

	if w.Code != http.StatusBadGateway {
		t.Errorf("Incorrect status - expected:%v, got:%v", http.StatusBadGateway, w.Code)
	}

	if body["error"] != "Upstream failure" {
		t.Errorf("Incorrect error - expected:%v, got:%v", "Upstream failure", body["error"])
	}

	if reader.calls != 1 {
		t.Errorf("Expected exactly one spreadsheet read, got %v", reader.calls)
	}
}

func TestEmptySheet(t *testing.T) {
	s, _ := setup(0)

	_, body := get(t, s.Latest(), http.MethodGet, "/api/latest?limit=5", "S3cret")

	if list, ok := body["rows"].([]any); !ok || len(list) != 0 {
		t.Errorf("Expected empty rows array, got %v", body["rows"])
	}
}

func TestRequestID(t *testing.T) {
	s, _ := setup(1)

	rq := httptest.NewRequest(http.MethodGet, "/api/latest", nil)
	rq.Header.Set("x-api-key", "S3cret")
	rq.Header.Set(REQUEST_ID_HEADER, "abc-123")

	w := httptest.NewRecorder()
	s.Latest().ServeHTTP(w, rq)

	if id := w.Header().Get(REQUEST_ID_HEADER); id != "abc-123" {
		t.Errorf("Incorrect request ID - expected:%v, got:%v", "abc-123", id)
	}

	w = httptest.NewRecorder()
	s.Latest().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

	if id := w.Header().Get(REQUEST_ID_HEADER); id == "" {
		t.Errorf("Expected generated request ID")
	}
}

func TestIdempotent(t *testing.T) {
	s, _ := setup(250)
	h := s.Paged()

	_, first := get(t, h, http.MethodGet, "/api/rows?offset=17&pageSize=33", "S3cret")
	_, second := get(t, h, http.MethodGet, "/api/rows?offset=17&pageSize=33", "S3cret")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical responses\n   first:  %v\n   second: %v\n", first, second)
	}
}

func TestUnavailable(t *testing.T) {
	w, body := get(t, Unavailable(fmt.Errorf("missing SPREADSHEET_ID")), http.MethodGet, "/api/latest", "S3cret")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Incorrect status - expected:%v, got:%v", http.StatusInternalServerError, w.Code)
	}

	if body["error"] != "Internal server error" {
		t.Errorf("Incorrect error - got:%v", body["error"])
	}
}
