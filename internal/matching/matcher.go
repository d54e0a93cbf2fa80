package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Method identifies which lookup resolved a product
type Method string

const (
	MethodEAN                   Method = "ean"
	MethodManufacturerReference Method = "manufacturer_reference"
	MethodSupplierReference     Method = "supplier_reference"
	MethodReference             Method = "reference"
)

// Catalog is the subset of the catalog store used for matching.
// Every lookup only considers active products.
type Catalog interface {
	FindActiveByEAN(ctx context.Context, ean string) (int64, bool, error)
	FindActiveByManufacturerReference(ctx context.Context, reference string) (int64, bool, error)
	FindActiveBySupplierReference(ctx context.Context, reference string) (int64, bool, error)
	FindActiveByReference(ctx context.Context, reference string) (int64, bool, error)
}

// Result is a resolved product
type Result struct {
	ProductID int64
	Method    Method
}

// Matcher resolves competitor identifiers to catalog products
type Matcher struct {
	catalog Catalog
	logger  *zerolog.Logger
}

// NewMatcher creates a matcher
func NewMatcher(catalog Catalog, logger *zerolog.Logger) *Matcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Matcher{catalog: catalog, logger: logger}
}

type step struct {
	method Method
	input  string
	lookup func(context.Context, string) (int64, bool, error)
}

// Match tries EAN first (separators stripped, all-zero placeholders ignored), then the reference against the manufacturer-joined
// catalog, supplier references and finally the plain catalog reference.
// The first hit wins.
func (m *Matcher) Match(ctx context.Context, reference, ean string) (Result, bool, error) {
	reference = strings.TrimSpace(reference)
	ean = NormalizeEAN(strings.TrimSpace(ean))
	if reference == "" && ean == "" {
		return Result{}, false, nil
	}

	steps := []step{
		{MethodEAN, ean, m.catalog.FindActiveByEAN},
		{MethodManufacturerReference, reference, m.catalog.FindActiveByManufacturerReference},
		{MethodSupplierReference, reference, m.catalog.FindActiveBySupplierReference},
		{MethodReference, reference, m.catalog.FindActiveByReference},
	}

	for _, s := range steps {
		if s.input == "" {
			continue
		}
		id, ok, err := s.lookup(ctx, s.input)
		if err != nil {
			return Result{}, false, fmt.Errorf("match by %s: %w", s.method, err)
		}
		if ok {
			m.logger.Debug().
				Str("method", string(s.method)).
				Str("reference", reference).
				Str("ean", ean).
				Int64("product_id", id).
				Msg("Product matched")
			return Result{ProductID: id, Method: s.method}, true, nil
		}
	}

	m.logger.Debug().Str("reference", reference).Str("ean", ean).Msg("No product match")
	return Result{}, false, nil
}
