package printer

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_KeyValue(t *testing.T) {
	d := NewDocument(20)
	d.KeyValue("Total", "185.00")

	out := d.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	assert.Equal(t, "Total         185.00\n", string(out[2:]))
}

func TestDocument_ItemLineTruncates(t *testing.T) {
	d := NewDocument(20)
	d.ItemLine(2, "Chicken Meal with Extra Rice", decimal.RequireFromString("370"))

	line := string(d.Bytes()[2:])
	assert.Equal(t, "2x Chicken Me 370.00\n", line)
	assert.Len(t, line, 21)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits", "Iced Tea", 10, []string{"Iced Tea"}},
		{"word boundary", "Thank you come again", 10, []string{"Thank you", "come again"}},
		{"long word", "ABCDEFGHIJKL", 5, []string{"ABCDE", "FGHIJ", "KL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.in, tt.width))
		})
	}
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())

	p, err = NewPrinterFromConfig("capture", "", "")
	require.NoError(t, err)
	require.NoError(t, p.Print([]byte("job")))
	assert.Equal(t, [][]byte{[]byte("job")}, p.(*CapturePrinter).Jobs())

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("laser", "", "")
	assert.Error(t, err)
}
