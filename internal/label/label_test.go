package label

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelprint/internal/product"
	"labelprint/internal/services"
)

const sampleZPL = `^XA
^FO20,20^FD${PRODUCT_TITLE_L1}^FS
^FO20,50^FD${PRODUCT_TITLE_L2}^FS
^FO20,90^FD$PRICE_STR^FS
^FO20,120^FD$PRICE_TYPE^FS
^FO20,150^BCN,60^FD$BARCODE^FS
^FO20,230^FD$SKU costs $$$PRICE^FS
^XZ`

func sampleRecord() product.Record {
	return product.NewRecord("N64-0001", "Super Mario 64 - Nintendo 64 - New/Sealed",
		decimal.RequireFromString("78.99"), "045496870010", "gid://shopify/ProductVariant/1",
		map[string]string{"Condition": "New/Sealed", "Box type": "Cart"}, time.Now())
}

func TestParseTemplateListsPlaceholders(t *testing.T) {
	tpl, err := ParseTemplate("sample.zpl", sampleZPL)
	require.NoError(t, err)
	assert.Equal(t, []string{"BARCODE", "PRICE", "PRICE_STR", "PRICE_TYPE", "PRODUCT_TITLE_L1", "PRODUCT_TITLE_L2", "SKU"}, tpl.Placeholders())
}

func TestParseTemplateRejectsEmpty(t *testing.T) {
	_, err := ParseTemplate("empty", "  \n")
	assert.ErrorIs(t, err, services.ErrTemplate)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label.zpl")
	require.NoError(t, os.WriteFile(path, []byte(sampleZPL), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "label.zpl", tpl.Name())

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.zpl"))
	assert.ErrorIs(t, err, services.ErrTemplate)
}

func TestFillSubstitutesEveryField(t *testing.T) {
	tpl, err := ParseTemplate("sample.zpl", sampleZPL)
	require.NoError(t, err)

	out, err := Fill(tpl, Fields(sampleRecord(), DefaultLayout()))
	require.NoError(t, err)
	assert.NotContains(t, out, "${")
	assert.Contains(t, out, "^FD   $78.99   ^FS")
	assert.Contains(t, out, "^FD New/Sealed ^FS")
	assert.Contains(t, out, "^FD045496870010^FS")
	assert.Contains(t, out, "^FDN64-0001 costs $78.99^FS")
	assert.Contains(t, out, "^FD^FS", "short titles leave line one blank")
}

func TestFillIsDeterministic(t *testing.T) {
	tpl, err := ParseTemplate("sample.zpl", sampleZPL)
	require.NoError(t, err)
	fields := Fields(sampleRecord(), DefaultLayout())

	first, err := Fill(tpl, fields)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Fill(tpl, fields)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFillReportsAllMissingFields(t *testing.T) {
	tpl, err := ParseTemplate("sample.zpl", "^XA^FD$WEIGHT^FS^FD${BARCODE}^FS^FD$WEIGHT^FS^XZ")
	require.NoError(t, err)

	rec := sampleRecord()
	rec.Barcode = ""
	_, err = Fill(tpl, Fields(rec, DefaultLayout()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrTemplate))
	assert.Contains(t, err.Error(), "BARCODE, WEIGHT")
}

func TestFillLeavesSpecialDollarsAlone(t *testing.T) {
	tpl, err := ParseTemplate("t", "cost $5 and $$ and $")
	require.NoError(t, err)
	out, err := Fill(tpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "cost $5 and $ and $", out)
}

func TestParseTemplateRejectsMalformedBraces(t *testing.T) {
	for name, text := range map[string]string{
		"unterminated":  "^XA^FD${SKU^FS^XZ",
		"empty":         "^XA^FD${}^FS^XZ",
		"not a name":    "^XA^FD${A B}^FS^XZ",
		"leading digit": "^XA\n^FD${1SKU}^FS^XZ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTemplate("bad.zpl", text)
			require.Error(t, err)
			assert.ErrorIs(t, err, services.ErrTemplate)
			assert.Contains(t, err.Error(), "invalid placeholder")
		})
	}
}

func TestParseTemplateReportsPlaceholderPosition(t *testing.T) {
	_, err := ParseTemplate("bad.zpl", "^XA\n^FD${SKU^FS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2, col 4")
}

func TestFillBracedAndBareNames(t *testing.T) {
	tpl, err := ParseTemplate("t", "^FD${SKU}x^FS ^FD$SKU_y^FS")
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "SKU_y"}, tpl.Placeholders())
	out, err := Fill(tpl, map[string]string{"SKU": "A1", "SKU_y": "B2"})
	require.NoError(t, err)
	assert.Equal(t, "^FDA1x^FS ^FDB2^FS", out)
}

func TestFieldsVariantAttributes(t *testing.T) {
	fields := Fields(sampleRecord(), DefaultLayout())
	assert.Equal(t, "New/Sealed", fields["VARIANT_CONDITION"])
	assert.Equal(t, "Cart", fields["VARIANT_BOX_TYPE"])
}

func TestFieldsPriceTypePreOwned(t *testing.T) {
	rec := sampleRecord()
	rec.Title = "Super Mario 64 - Nintendo 64 - Game Only"
	fields := Fields(rec, DefaultLayout())
	assert.Equal(t, " Pre-Owned  ", fields[FieldPriceType])
}

func TestFieldsOmitsEmptyTitle(t *testing.T) {
	rec := sampleRecord()
	rec.Title = ""
	fields := Fields(rec, DefaultLayout())
	_, ok := fields[FieldTitleLine2]
	assert.False(t, ok)
	_, ok = fields[FieldPriceType]
	assert.False(t, ok)
}

func TestTitleLinesWrapsLongTitles(t *testing.T) {
	l1, l2 := titleLines("SNS-IS-GO-13823", "The Legend of Zelda A Link to the Past Collectors Edition - SNES", 26)
	assert.Equal(t, "SNS: The Legend of Zelda A", l1)
	assert.True(t, strings.HasSuffix(l2, " (...)"), "got %q", l2)
	assert.LessOrEqual(t, len(l2), 26)
}

func TestTitleLinesCentersShortTitle(t *testing.T) {
	l1, l2 := titleLines("N64-0001", "Super Mario 64 - Nintendo 64", 26)
	assert.Empty(t, l1)
	assert.Equal(t, "   N64: Super Mario 64    ", l2)
	assert.Len(t, l2, 26)
}

func TestCenterMatchesPythonPadding(t *testing.T) {
	assert.Equal(t, "  ab  ", center("ab", 6))
	assert.Equal(t, " abc  ", center("abc", 6))
	assert.Equal(t, "  ab ", center("ab", 5))
	assert.Equal(t, "toolong", center("toolong", 3))
}

func TestWrapTwoLines(t *testing.T) {
	assert.Equal(t, []string{"alpha beta", "gamma"}, wrap("alpha beta gamma", 10, 2, " (...)"))
	assert.Equal(t, []string{"alpha beta", "gamma (...)"}, wrap("alpha beta gamma delta epsilon", 11, 2, " (...)"))
	assert.Equal(t, []string{"NES: Supercalifragilistice", "xpialidocious Adventure"},
		wrap("NES: Supercalifragilisticexpialidocious Adventure", 26, 2, " (...)"))
	assert.Equal(t, []string{"abcdefghij", "klmnopq"}, wrap("abcdefghijklmnopq", 10, 2, " (...)"))
}

func TestWrapBreaksAfterHyphens(t *testing.T) {
	assert.Equal(t, []string{"aaaa Spider-", "Man"}, wrap("aaaa Spider-Man", 12, 2, " (...)"))
	assert.Equal(t, []string{"SNS: X-Men", "Mutant"}, wrap("SNS: X-Men Mutant", 11, 2, " (...)"))
	assert.Equal(t, []string{"GEN: Spider-", "Man vs (...)"}, wrap("GEN: Spider-Man vs the Kingpin", 14, 2, " (...)"))
	assert.Equal(t, []string{"Pac-", "Man"}, wrap("Pac-Man", 6, 2, " (...)"))
	assert.Equal(t, []string{"SNS: Contra", "--Hard (...)"}, wrap("SNS: Contra--Hard Corps", 12, 2, " (...)"))
}

func TestSanitizeFoldsToASCII(t *testing.T) {
	assert.Equal(t, "Pokemon Cafe", sanitize("Pokémon Café"))
	assert.Equal(t, "a b", sanitize("a^b"))
	assert.Equal(t, "snow?", sanitize("snow☃"))
}
