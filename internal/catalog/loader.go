package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"

	"gopkg.in/yaml.v3"
)

// Loader produces a validated snapshot.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// ProductLister is the read side of a persistent product catalog.
type ProductLister interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// FileLoader reads rules and products from JSON or YAML files.
type FileLoader struct {
	RulesPath        string
	ProductsPath     string
	RoundingOverride money.RoundingMode
}

func (l FileLoader) Load(_ context.Context) (*Snapshot, error) {
	rules, err := ReadRules(l.RulesPath)
	if err != nil {
		return nil, err
	}
	products, err := ReadProducts(l.ProductsPath)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(products, rules, l.RoundingOverride)
}

// RepositoryLoader reads rules from a file and products from a repository.
type RepositoryLoader struct {
	RulesPath        string
	Products         ProductLister
	RoundingOverride money.RoundingMode
}

func (l RepositoryLoader) Load(ctx context.Context) (*Snapshot, error) {
	rules, err := ReadRules(l.RulesPath)
	if err != nil {
		return nil, err
	}
	products, err := l.Products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return NewSnapshot(products, rules, l.RoundingOverride)
}

// ReadRules parses a rule file; the extension picks JSON or YAML.
func ReadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read bundle rules: %w", err)
	}
	var raw rawRules
	if err := decode(path, data, &raw); err != nil {
		return Rules{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	return raw.toRules()
}

// ReadProducts parses a product list file; the extension picks JSON or YAML.
func ReadProducts(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	var raw []rawProduct
	if err := decode(path, data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	return parseProducts(raw)
}

func parseProducts(raw []rawProduct) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(raw))
	for i, rp := range raw {
		p, err := rp.toProduct(i)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decode(path string, data []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(out)
	}
}
