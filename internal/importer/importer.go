// Package importer ingests supplier price lists: it parses CSV/XLSX rows
// into price records and upserts them in bounded-concurrency batches,
// keeping a price history row per change of cost price.
package importer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voltgruppen/kalk-cli/internal/db"
	"github.com/voltgruppen/kalk-cli/internal/fetcher"
)

// PriceRecord is one parsed supplier price-list row.
type PriceRecord struct {
	Supplier    string
	SupplierSKU string
	Name        string
	Unit        string
	CostPrice   float64
	SalePrice   float64
}

// Options configures one import run.
type Options struct {
	Supplier    string
	BatchSize   int // default 500
	Concurrency int // default 4
	CSV         fetcher.CSVOptions
	// ETag is the tag of the last imported list; unchanged lists are skipped.
	ETag string
}

// Stats summarizes an import run.
type Stats struct {
	Rows     int
	Skipped  int
	Batches  int
	Upserted int64
	// Unchanged is true when the source ETag matched and nothing was fetched.
	Unchanged bool
	ETag      string
}

// Importer runs supplier price imports against postgres.
type Importer struct {
	pool  db.Pool
	fetch fetcher.Fetcher
}

// New creates an Importer.
func New(pool db.Pool, fetch fetcher.Fetcher) *Importer {
	return &Importer{pool: pool, fetch: fetch}
}

const priceSchema = `
CREATE TABLE IF NOT EXISTS supplier_prices (
	supplier     TEXT NOT NULL,
	supplier_sku TEXT NOT NULL,
	name         TEXT NOT NULL,
	unit         TEXT NOT NULL DEFAULT 'stk',
	cost_price   DOUBLE PRECISION NOT NULL,
	sale_price   DOUBLE PRECISION NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (supplier, supplier_sku)
);

CREATE TABLE IF NOT EXISTS supplier_price_history (
	supplier     TEXT NOT NULL,
	supplier_sku TEXT NOT NULL,
	cost_price   DOUBLE PRECISION NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_sku
	ON supplier_price_history(supplier, supplier_sku);
`

// Migrate creates the price tables.
func (im *Importer) Migrate(ctx context.Context) error {
	_, err := im.pool.Exec(ctx, priceSchema)
	return eris.Wrap(err, "importer: migrate")
}

// ImportCSV downloads and ingests a CSV price list from the given URL.
func (im *Importer) ImportCSV(ctx context.Context, url string, opts Options) (*Stats, error) {
	if opts.Supplier == "" {
		return nil, eris.New("importer: supplier name is required")
	}

	body, etag, changed, err := im.fetch.DownloadIfChanged(ctx, url, opts.ETag)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: download %s", url)
	}
	if !changed {
		zap.L().Info("importer: price list unchanged, skipping",
			zap.String("supplier", opts.Supplier), zap.String("url", url))
		return &Stats{Unchanged: true, ETag: etag}, nil
	}
	defer body.Close()

	rowCh, errCh := fetcher.StreamCSV(ctx, body, opts.CSV)
	stats, err := im.importRows(ctx, rowCh, errCh, opts)
	if err != nil {
		return nil, err
	}
	stats.ETag = etag
	return stats, nil
}

// ImportXLSX ingests a local XLSX price list.
func (im *Importer) ImportXLSX(ctx context.Context, path string, xlsxOpts fetcher.XLSXOptions, opts Options) (*Stats, error) {
	if opts.Supplier == "" {
		return nil, eris.New("importer: supplier name is required")
	}

	rows, err := fetcher.ReadXLSX(path, xlsxOpts)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read %s", path)
	}

	rowCh := make(chan []string)
	errCh := make(chan error, 1)
	go func() {
		defer close(rowCh)
		defer close(errCh)
		for _, row := range rows {
			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return im.importRows(ctx, rowCh, errCh, opts)
}

// importRows drains the row channel and upserts batches concurrently.
func (im *Importer) importRows(ctx context.Context, rowCh <-chan []string, errCh <-chan error, opts Options) (*Stats, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	stats := &Stats{}
	now := time.Now().UTC()

	var upserted int64
	results := make(chan int64, 64)
	done := make(chan struct{})
	go func() {
		for n := range results {
			upserted += n
		}
		close(done)
	}()

	batch := make([]PriceRecord, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		records := batch
		batch = make([]PriceRecord, 0, batchSize)
		stats.Batches++
		g.Go(func() error {
			n, err := im.upsertBatch(gctx, records, now)
			if err != nil {
				return err
			}
			results <- n
			return nil
		})
	}

	for row := range rowCh {
		rec, err := ParseRow(opts.Supplier, row)
		if err != nil {
			stats.Skipped++
			zap.L().Debug("importer: skipping row", zap.Strings("row", row), zap.Error(err))
			continue
		}
		stats.Rows++
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			flush()
		}
	}
	csvErr := <-errCh
	if csvErr == nil {
		flush()
	}

	waitErr := g.Wait()
	close(results)
	<-done
	if csvErr != nil {
		return nil, csvErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	stats.Upserted = upserted
	zap.L().Info("importer: price list imported",
		zap.String("supplier", opts.Supplier),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("batches", stats.Batches),
		zap.Int64("upserted", stats.Upserted),
	)
	return stats, nil
}

// upsertBatch writes one batch: an upsert into supplier_prices and a history
// row per record.
func (im *Importer) upsertBatch(ctx context.Context, records []PriceRecord, now time.Time) (int64, error) {
	rows := make([][]any, len(records))
	history := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{rec.Supplier, rec.SupplierSKU, rec.Name, rec.Unit, rec.CostPrice, rec.SalePrice, now}
		history[i] = []any{rec.Supplier, rec.SupplierSKU, rec.CostPrice, now}
	}

	n, err := db.BulkUpsert(ctx, im.pool, db.UpsertConfig{
		Table:        "supplier_prices",
		Columns:      []string{"supplier", "supplier_sku", "name", "unit", "cost_price", "sale_price", "updated_at"},
		ConflictKeys: []string{"supplier", "supplier_sku"},
	}, rows)
	if err != nil {
		return 0, err
	}

	if _, err := db.CopyFrom(ctx, im.pool, "supplier_price_history",
		[]string{"supplier", "supplier_sku", "cost_price", "recorded_at"}, history); err != nil {
		return 0, err
	}
	return n, nil
}

// ParseRow maps a price-list row to a record. The wholesaler column layout
// is: item number, name, unit, cost price, sale price. Prices use the Danish
// decimal comma.
func ParseRow(supplier string, row []string) (PriceRecord, error) {
	if len(row) < 4 {
		return PriceRecord{}, eris.Errorf("importer: row has %d columns, need at least 4", len(row))
	}

	sku := strings.TrimSpace(row[0])
	name := strings.TrimSpace(row[1])
	if sku == "" || name == "" {
		return PriceRecord{}, eris.New("importer: missing item number or name")
	}

	rec := PriceRecord{
		Supplier:    supplier,
		SupplierSKU: sku,
		Name:        name,
		Unit:        "stk",
	}

	priceCols := row[2:]
	if len(row) >= 5 {
		if unit := strings.TrimSpace(row[2]); unit != "" {
			rec.Unit = unit
		}
		priceCols = row[3:]
	}

	cost, err := ParsePrice(priceCols[0])
	if err != nil {
		return PriceRecord{}, err
	}
	rec.CostPrice = cost
	rec.SalePrice = cost
	if len(priceCols) > 1 && strings.TrimSpace(priceCols[1]) != "" {
		sale, err := ParsePrice(priceCols[1])
		if err != nil {
			return PriceRecord{}, err
		}
		rec.SalePrice = sale
	}

	if rec.CostPrice < 0 || rec.SalePrice < 0 {
		return PriceRecord{}, eris.Errorf("importer: negative price for %s", sku)
	}
	return rec, nil
}

// ParsePrice reads a price in Danish format (thousands dot, decimal comma)
// or plain decimal-point format.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "importer: parse price %q", s)
	}
	return v, nil
}
