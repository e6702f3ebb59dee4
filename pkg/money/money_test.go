package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitVAT(t *testing.T) {
	tests := []struct {
		name    string
		gross   string
		wantNet string
		wantVAT string
	}{
		{name: "typical order", gross: "565.00", wantNet: "504.46", wantVAT: "60.54"},
		{name: "even split", gross: "112.00", wantNet: "100.00", wantVAT: "12.00"},
		{name: "zero", gross: "0", wantNet: "0.00", wantVAT: "0.00"},
		{name: "single peso", gross: "1.00", wantNet: "0.89", wantVAT: "0.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, vat := SplitVAT(MustNew(tt.gross), DefaultVATRate)
			assert.Equal(t, tt.wantNet, Format(net))
			assert.Equal(t, tt.wantVAT, Format(vat))
			assert.True(t, net.Add(vat).Equal(MustNew(tt.gross)), "net + vat must equal gross before rounding")
		})
	}
}

func TestRoundIsBankers(t *testing.T) {
	assert.Equal(t, "0.12", Round(MustNew("0.125")).StringFixed(2))
	assert.Equal(t, "0.14", Round(MustNew("0.135")).StringFixed(2))
	assert.Equal(t, "2.68", Round(MustNew("2.675")).StringFixed(2))
}

func TestPercentAndBounds(t *testing.T) {
	assert.True(t, Percent(MustNew("500"), decimal.NewFromInt(20)).Equal(MustNew("100")))
	assert.True(t, Min(MustNew("1000"), DefaultOtherDiscountCap).Equal(MustNew("500")))
	assert.True(t, Max(MustNew("-3"), Zero).IsZero())
	assert.True(t, NonNegative(MustNew("-0.01")).IsZero())
}

func TestNew(t *testing.T) {
	d, err := New("120.50")
	require.NoError(t, err)
	assert.Equal(t, "120.50", Format(d))

	_, err = New("abc")
	require.Error(t, err)
}
