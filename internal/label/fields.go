package label

import (
	"strings"

	"labelprint/internal/product"
)

// Field names available to templates.
const (
	FieldSKU            = "SKU"
	FieldTitle          = "TITLE"
	FieldBarcode        = "BARCODE"
	FieldPrice          = "PRICE"
	FieldPriceStr       = "PRICE_STR"
	FieldPriceType      = "PRICE_TYPE"
	FieldTitleLine1     = "PRODUCT_TITLE_L1"
	FieldTitleLine2     = "PRODUCT_TITLE_L2"
	variantFieldPrefix  = "VARIANT_"
	newSealedSuffix     = "New/Sealed"
	preOwnedLabel       = "Pre-Owned"
	titleEllipsis       = " (...)"
	titleSeparator      = " - "
	defaultTitleWidth   = 26
	defaultPriceWidth   = 12
	defaultPriceTypeLen = 12
)

// Layout holds per-field line widths in characters.
type Layout struct {
	LineMaxChars map[string]int
}

// DefaultLayout returns the widths used for a 2.25x1.25 inch label.
func DefaultLayout() Layout {
	return Layout{LineMaxChars: map[string]int{
		FieldTitleLine1: defaultTitleWidth,
		FieldTitleLine2: defaultTitleWidth,
		FieldPriceStr:   defaultPriceWidth,
		FieldPriceType:  defaultPriceTypeLen,
	}}
}

func (l Layout) width(field string, fallback int) int {
	if w, ok := l.LineMaxChars[field]; ok && w > 0 {
		return w
	}
	return fallback
}

// Fields builds the substitution context for rec. Only fields the record
// actually carries are present, so a template using a missing one fails to fill.
func Fields(rec product.Record, layout Layout) map[string]string {
	fields := make(map[string]string)
	sku := sanitize(string(rec.SKU))
	if sku != "" {
		fields[FieldSKU] = sku
	}
	if barcode := sanitize(rec.Barcode); barcode != "" {
		fields[FieldBarcode] = barcode
	}

	price := rec.PriceString()
	fields[FieldPrice] = price
	fields[FieldPriceStr] = center("$"+price, layout.width(FieldPriceStr, defaultPriceWidth))

	if title := sanitize(rec.Title); title != "" {
		fields[FieldTitle] = title
		priceType := preOwnedLabel
		if strings.HasSuffix(title, newSealedSuffix) {
			priceType = newSealedSuffix
		}
		fields[FieldPriceType] = center(priceType, layout.width(FieldPriceType, defaultPriceTypeLen))

		l1, l2 := titleLines(sku, title, layout.width(FieldTitleLine1, defaultTitleWidth))
		fields[FieldTitleLine1] = l1
		fields[FieldTitleLine2] = l2
	}

	for name, value := range rec.Attributes {
		key := variantFieldName(name)
		if key == variantFieldPrefix {
			continue
		}
		fields[key] = sanitize(value)
	}
	return fields
}

// titleLines renders "<sku prefix>: <short title>" into two label lines.
// A title that fits goes centered on the second line.
func titleLines(sku, title string, width int) (string, string) {
	prefix, _, _ := strings.Cut(sku, "-")
	short, _, _ := strings.Cut(title, titleSeparator)
	full := prefix + ": " + short
	if len(full) <= width {
		return "", center(full, width)
	}
	lines := wrap(full, width, 2, titleEllipsis)
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return "", lines[0]
	default:
		return lines[0], lines[1]
	}
}

func variantFieldName(name string) string {
	var b strings.Builder
	b.WriteString(variantFieldPrefix)
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
