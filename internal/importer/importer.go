package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a catalog export and upserts products. The whole file is
// validated before the first write.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

var requiredColumns = []string{"sku", "type", "msrp"}

// Run parses every row, validates the catalog and upserts it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	var products []domain.Product
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}
		line++

		if blank(record) {
			continue
		}
		p, err := parseRow(record, index)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
	}

	if err := catalog.ValidateProducts(products); err != nil {
		return 0, err
	}

	imported := 0
	for _, p := range products {
		if err := i.save(ctx, p); err != nil {
			return imported, err
		}
		imported++
	}
	i.logger.Info("products imported", zap.Int("count", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p domain.Product) error {
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.SKU, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	sku := pick(record, index, "sku")
	typ := pick(record, index, "type")
	msrpStr := pick(record, index, "msrp")
	if sku == "" || typ == "" || msrpStr == "" {
		return domain.Product{}, fmt.Errorf("sku, type and msrp are required (sku %q)", sku)
	}

	msrp, err := decimal.NewFromString(msrpStr)
	if err != nil {
		return domain.Product{}, fmt.Errorf("sku %s: invalid msrp %q", sku, msrpStr)
	}

	p := domain.Product{
		SKU:   sku,
		Title: pick(record, index, "title"),
		Type:  domain.ProductType(typ),
		MSRP:  msrp,
	}

	if v := pick(record, index, "sortOrder"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.Product{}, fmt.Errorf("sku %s: invalid sortOrder %q", sku, v)
		}
		p.SortOrder = &n
	}
	if v := pick(record, index, "visible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Product{}, fmt.Errorf("sku %s: invalid visible %q", sku, v)
		}
		p.Visible = b
	}
	if v := pick(record, index, "countsTowardThreshold"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Product{}, fmt.Errorf("sku %s: invalid countsTowardThreshold %q", sku, v)
		}
		p.CountsTowardThreshold = &b
	}
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
