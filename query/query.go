package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Mode string

const (
	ALL    Mode = "all"
	LATEST Mode = "latest"
	PAGED  Mode = "paged"
)

const (
	DEFAULT_OFFSET       = 0
	DEFAULT_PAGE_SIZE    = 100
	DEFAULT_RECENT_LIMIT = 10

	// Largest integer that survives a round trip through a float64 unchanged.
	maxSafeInteger = 1<<53 - 1
)

var validate = validator.New()

// Result is the outcome of parsing a query string: either a validated value or the
// reason the query was rejected. Callers decide which defaults replace a failed parse.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// OrDefault returns the parsed value, or v if parsing failed.
func (r Result[T]) OrDefault(v T) T {
	if r.Err != nil {
		return v
	}

	return r.Value
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// LimitQuery selects either the entire sheet or the last Limit rows.
type LimitQuery struct {
	All   bool
	Limit int
}

func (q LimitQuery) Mode() Mode {
	if q.All {
		return ALL
	}

	return LATEST
}

// PageQuery selects a window of PageSize rows starting at Offset, unless Limit is set
// in which case the last Limit rows are selected and the window is ignored.
type PageQuery struct {
	Limit    *int
	Offset   int
	PageSize int
}

func (q PageQuery) Mode() Mode {
	if q.Limit != nil {
		return LATEST
	}

	return PAGED
}

// RecentQuery selects the last Limit rows.
type RecentQuery struct {
	Limit int
}

var (
	DefaultLimitQuery  = LimitQuery{All: true}
	DefaultPageQuery   = PageQuery{Offset: DEFAULT_OFFSET, PageSize: DEFAULT_PAGE_SIZE}
	DefaultRecentQuery = RecentQuery{Limit: DEFAULT_RECENT_LIMIT}
)

// ParseLimit accepts limit=all or an integer limit in [1,10000]. An absent limit
// means 'all'.
func ParseLimit(values url.Values) Result[LimitQuery] {
	raw, present, err := single(values, "limit")
	if err != nil {
		return failed[LimitQuery](err)
	} else if !present || raw == "all" {
		return ok(LimitQuery{All: true})
	}

	n, err := integer("limit", raw)
	if err != nil {
		return failed[LimitQuery](err)
	}

	bounded := struct {
		Limit int `validate:"min=1,max=10000"`
	}{
		Limit: n,
	}

	if err := validate.Struct(bounded); err != nil {
		return failed[LimitQuery](err)
	}

	return ok(LimitQuery{Limit: n})
}

// ParsePage validates the offset, pageSize and optional legacy limit as a unit: a single
// invalid field fails the whole query.
func ParsePage(values url.Values) Result[PageQuery] {
	bounded := struct {
		Offset   int  `validate:"min=0"`
		PageSize int  `validate:"min=1,max=200"`
		Limit    *int `validate:"omitempty,min=1,max=10000"`
	}{
		Offset:   DEFAULT_OFFSET,
		PageSize: DEFAULT_PAGE_SIZE,
	}

	fields := []struct {
		key   string
		apply func(int)
	}{
		{"offset", func(v int) { bounded.Offset = v }},
		{"pageSize", func(v int) { bounded.PageSize = v }},
		{"limit", func(v int) { bounded.Limit = &v }},
	}

	for _, f := range fields {
		raw, present, err := single(values, f.key)
		if err != nil {
			return failed[PageQuery](err)
		} else if !present {
			continue
		}

		n, err := integer(f.key, raw)
		if err != nil {
			return failed[PageQuery](err)
		}

		f.apply(n)
	}

	if err := validate.Struct(bounded); err != nil {
		return failed[PageQuery](err)
	}

	return ok(PageQuery{
		Limit:    bounded.Limit,
		Offset:   bounded.Offset,
		PageSize: bounded.PageSize,
	})
}

// ParseRecent accepts any number in [1,100] as the limit, truncating fractional values.
func ParseRecent(values url.Values) Result[RecentQuery] {
	raw, present, err := single(values, "limit")
	if err != nil {
		return failed[RecentQuery](err)
	} else if !present {
		return ok(DefaultRecentQuery)
	}

	f, err := number("limit", raw)
	if err != nil {
		return failed[RecentQuery](err)
	}

	bounded := struct {
		Limit float64 `validate:"min=1,max=100"`
	}{
		Limit: f,
	}

	if err := validate.Struct(bounded); err != nil {
		return failed[RecentQuery](err)
	}

	return ok(RecentQuery{Limit: int(math.Trunc(f))})
}

func single(values url.Values, key string) (string, bool, error) {
	v, present := values[key]

	switch {
	case !present || len(v) == 0:
		return "", false, nil

	case len(v) > 1:
		return "", true, fmt.Errorf("'%v' specified %v times", key, len(v))

	default:
		return v[0], true, nil
	}
}

// number coerces a query value the way a loosely typed client would: surrounding
// whitespace is ignored and an empty value is zero.
func number(key, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%v' value '%v' (%v)", key, raw, err)
	} else if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid '%v' value '%v' (not a finite number)", key, raw)
	}

	return f, nil
}

func integer(key, raw string) (int, error) {
	f, err := number(key, raw)
	if err != nil {
		return 0, err
	}

	if f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, fmt.Errorf("invalid '%v' value '%v' (not an integer)", key, raw)
	}

	return int(f), nil
}
