package spreadsheet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/rowquery/rowquery-sheets/rows"
)

const SHEETS = "https://www.googleapis.com/auth/spreadsheets"

// Reader fetches sheet contents through the Google Sheets v4 values API.
type Reader struct {
	service *sheets.Service
}

// NewReader creates a Reader authenticated as the service account identified by email
// and PEM encoded private key. The token source outlives any single request so it is
// bound to a background context; per call cancellation is applied in Rows.
func NewReader(email, key string, opts ...option.ClientOption) (*Reader, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("missing service account email")
	}

	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("missing service account private key")
	}

	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(key),
		Scopes:     []string{SHEETS},
		TokenURL:   google.JWTTokenURL,
	}

	client := conf.Client(context.Background())

	return New(append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
}

// New creates a Reader from arbitrary client options.
func New(opts ...option.ClientOption) (*Reader, error) {
	service, err := sheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return &Reader{
		service: service,
	}, nil
}

// Rows returns every row in columns A through Z of the named sheet.
func (r *Reader) Rows(ctx context.Context, spreadsheet, sheet string) (rows.RowSet, error) {
	area := A1Range(sheet, "A", "Z")

	response, err := r.service.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	return rows.FromValues(response.Values), nil
}

var plain = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// A1Range formats a whole-column range for a sheet, quoting the sheet name when it
// contains anything other than letters, digits and underscores.
func A1Range(sheet, from, to string) string {
	name := sheet
	if !plain.MatchString(sheet) {
		name = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}

	return fmt.Sprintf("%s!%s:%s", name, from, to)
}
