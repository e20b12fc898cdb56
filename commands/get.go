package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowquery/rowquery-sheets/handler"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/query"
	"github.com/rowquery/rowquery-sheets/rows"
)

var GetCmd = Get{
	limit:    "all",
	offset:   query.DEFAULT_OFFSET,
	pageSize: query.DEFAULT_PAGE_SIZE,
	format:   "tsv",
	file:     time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	limit    string
	offset   int
	pageSize int
	paged    bool
	format   string
	file     string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves rows from the configured Google Sheets worksheet and stores them to a local file"
}

func (cmd *Get) Usage() string {
	return "[--limit <N|all>] [--offset <N> --page-size <N>] [--format tsv|json] [--file <file>]"
}

func (cmd *Get) Configure(c *cobra.Command) {
	c.Long = strings.Join([]string{
		"Downloads rows from the worksheet configured by SPREADSHEET_ID and SHEET_NAME, applying the same",
		"selection rules as the HTTP endpoints. --offset/--page-size select a page, otherwise --limit selects",
		"the last N rows (or all rows).",
	}, "\n")

	c.Example = strings.Join([]string{
		`  rowquery-sheets --debug get --limit 25 --file "latest.tsv"`,
		`  rowquery-sheets get --offset 200 --page-size 100 --format json --file -`,
	}, "\n")

	flagset := c.Flags()

	flagset.StringVar(&cmd.limit, "limit", cmd.limit, "Number of rows to retrieve from the end of the sheet, or 'all'")
	flagset.IntVar(&cmd.offset, "offset", cmd.offset, "First row of the page to retrieve")
	flagset.IntVar(&cmd.pageSize, "page-size", cmd.pageSize, "Number of rows in the page to retrieve")
	flagset.StringVar(&cmd.format, "format", cmd.format, "Output format ('tsv' or 'json')")
	flagset.StringVar(&cmd.file, "file", cmd.file, "Output file name, '-' for stdout. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")
}

func (cmd *Get) Execute(c *cobra.Command, options *Options) error {
	cmd.paged = c.Flags().Changed("offset") || c.Flags().Changed("page-size")

	if cmd.format != "tsv" && cmd.format != "json" {
		return fmt.Errorf("invalid --format '%v' - expected 'tsv' or 'json'", cmd.format)
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	selectRows, err := cmd.selection()
	if err != nil {
		return err
	}

	cfg, err := load(options)
	if err != nil {
		return err
	}

	log.Debugf("Spreadsheet - ID:%s  sheet:%s", cfg.SpreadsheetID, cfg.SheetName)

	r, err := reader(cfg)
	if err != nil {
		return err
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rs, err := r.Rows(ctx, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		return err
	}

	selected, envelope := selectRows(rs)

	if err := cmd.write(c.OutOrStdout(), selected, envelope); err != nil {
		return err
	}

	log.Infof("Retrieved %v of %v rows", len(selected), len(rs))

	return nil
}

// selection validates the command line options up front and returns the row
// selection they describe. Unlike the HTTP endpoints, invalid options are an error.
func (cmd *Get) selection() (func(rows.RowSet) (rows.RowSet, any), error) {
	values := url.Values{}

	if cmd.paged {
		values.Set("offset", strconv.Itoa(cmd.offset))
		values.Set("pageSize", strconv.Itoa(cmd.pageSize))
		if cmd.limit != "all" {
			values.Set("limit", cmd.limit)
		}

		result := query.ParsePage(values)
		if !result.OK() {
			return nil, fmt.Errorf("invalid paging options (%v)", result.Err)
		}

		q := result.Value

		return func(rs rows.RowSet) (rows.RowSet, any) {
			if q.Mode() == query.LATEST {
				selected := rows.Latest(rs, *q.Limit)

				return selected, handler.ModeEnvelope{OK: true, Rows: selected, TotalRows: len(rs), Mode: query.LATEST}
			}

			page := rows.Paginate(rs, q.Offset, q.PageSize)

			return page.Rows, handler.PagedEnvelope{
				OK:         true,
				Rows:       page.Rows,
				TotalRows:  len(rs),
				Mode:       query.PAGED,
				Offset:     page.Offset,
				PageSize:   page.PageSize,
				NextOffset: page.NextOffset,
				HasMore:    page.HasMore,
			}
		}, nil
	}

	values.Set("limit", cmd.limit)

	result := query.ParseLimit(values)
	if !result.OK() {
		return nil, fmt.Errorf("invalid --limit '%v' (%v)", cmd.limit, result.Err)
	}

	q := result.Value

	return func(rs rows.RowSet) (rows.RowSet, any) {
		selected := rows.All(rs)
		if q.Mode() == query.LATEST {
			selected = rows.Latest(rs, q.Limit)
		}

		return selected, handler.Envelope{OK: true, Rows: selected, TotalRows: len(rs)}
	}, nil
}

func (cmd *Get) write(stdout io.Writer, selected rows.RowSet, envelope any) error {
	encode := func(w io.Writer) error {
		if cmd.format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")

			return enc.Encode(envelope)
		}

		return rows.MakeTSV(w, selected)
	}

	if cmd.file == "-" {
		return encode(stdout)
	}

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rows")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := encode(tmp); err != nil {
		return fmt.Errorf("error creating %v file (%v)", strings.ToUpper(cmd.format), err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	log.Infof("Stored rows to file %s", cmd.file)

	return nil
}
