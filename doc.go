// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package rowquery-sheets serves the rows of a Google Sheets worksheet as JSON, gated by a static API key.

The row endpoints are intended to be deployed as serverless functions (package api) but can also be hosted
by the rowquery-sheets command, which supports the following commands:

  - serve, to run the /api/latest, /api/rows and /api/recent endpoints as an HTTP server
  - get, to download rows from the worksheet as a TSV or JSON file
  - version, to display the current version

The endpoints differ only in how they select rows:

  - /api/latest returns every row, or the last 'limit' rows (1-10000)
  - /api/rows returns a page of 'pageSize' rows (1-200, default 100) starting at 'offset', or the last 'limit'
    rows if a limit is supplied
  - /api/recent returns the last 'limit' rows (1-100, default 10)

Invalid query parameters never fail a request - the endpoint falls back to its defaults instead.
*/
package rowquery
