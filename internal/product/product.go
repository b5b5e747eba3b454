// Package product defines the SKU identifier and the immutable product record
// shared by the cache, the Shopify client, and the label renderer.
package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SKU is an opaque stock-keeping-unit identifier.
type SKU string

// NormalizeSKU trims surrounding whitespace. Case is preserved.
func NormalizeSKU(raw string) SKU {
	return SKU(strings.TrimSpace(raw))
}

// String returns the raw SKU text.
func (s SKU) String() string { return string(s) }

// Valid reports whether the SKU is non-empty after normalization.
func (s SKU) Valid() bool { return NormalizeSKU(string(s)) != "" }

// Record is the normalized product variant data used to fill a label.
// Records are passed by value; the attribute map is copied on the way in and out.
type Record struct {
	SKU        SKU               `json:"sku"`
	Title      string            `json:"title"`
	Price      decimal.Decimal   `json:"price"`
	Barcode    string            `json:"barcode,omitempty"`
	VariantID  string            `json:"variant_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// NewRecord builds a record with trimmed text fields and a private copy of attrs.
func NewRecord(sku SKU, title string, price decimal.Decimal, barcode, variantID string, attrs map[string]string, fetchedAt time.Time) Record {
	return Record{
		SKU:        NormalizeSKU(string(sku)),
		Title:      strings.TrimSpace(title),
		Price:      price,
		Barcode:    strings.TrimSpace(barcode),
		VariantID:  strings.TrimSpace(variantID),
		Attributes: cloneAttrs(attrs),
		FetchedAt:  fetchedAt.UTC(),
	}
}

// Attribute returns the named selected option.
func (r Record) Attribute(name string) (string, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// AttributeMap returns a copy of the selected options.
func (r Record) AttributeMap() map[string]string {
	return cloneAttrs(r.Attributes)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	r.Attributes = cloneAttrs(r.Attributes)
	return r
}

// PriceString formats the price with two decimal places.
func (r Record) PriceString() string {
	return r.Price.StringFixed(2)
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}
