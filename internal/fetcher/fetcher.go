// Package fetcher downloads supplier price lists over HTTP and FTP and
// parses the CSV/XLSX formats wholesalers publish them in.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads a remote price list.
type Fetcher interface {
	// Download fetches the URL and returns the response body. The caller
	// closes it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadIfChanged fetches the URL only when its ETag differs from the
	// one seen last import. Returns (body, newETag, changed, error); body is
	// nil when unchanged.
	DownloadIfChanged(ctx context.Context, url, etag string) (io.ReadCloser, string, bool, error)
}
