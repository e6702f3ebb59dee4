package entity

import "github.com/shopspring/decimal"

// BusinessHeader is the registered business identity printed on receipts and readings
type BusinessHeader struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	TIN        string `json:"tin,omitempty"`
	MIN        string `json:"min,omitempty"`
	SerialNo   string `json:"serial_no,omitempty"`
	PermitNo   string `json:"permit_no,omitempty"`
	Operator   string `json:"operator,omitempty"`
	TerminalID string `json:"terminal_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// ReceiptPayment is one tender line as printed
type ReceiptPayment struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no,omitempty"`
}

// Receipt is a value object representing a printable official receipt.
// It is composed from a finalized order at print time and never stored.
type Receipt struct {
	Header         BusinessHeader   `json:"header"`
	Training       bool             `json:"training"`
	InvoiceNo      string           `json:"invoice_no"`
	Date           string           `json:"date"`
	Cashier        string           `json:"cashier,omitempty"`
	OrderType      string           `json:"order_type"`
	Items          []ReceiptItem    `json:"items"`
	Total          decimal.Decimal  `json:"total"`
	DiscountLabel  string           `json:"discount_label,omitempty"`
	Discount       decimal.Decimal  `json:"discount"`
	AmountDue      decimal.Decimal  `json:"amount_due"`
	Payments       []ReceiptPayment `json:"payments"`
	Tendered       decimal.Decimal  `json:"tendered"`
	Change         decimal.Decimal  `json:"change"`
	VATableSales   decimal.Decimal  `json:"vatable_sales"`
	VATAmount      decimal.Decimal  `json:"vat_amount"`
	VATExemptSales decimal.Decimal  `json:"vat_exempt_sales"`
	ZeroRatedSales decimal.Decimal  `json:"zero_rated_sales"`
	Beneficiaries  []string         `json:"beneficiaries,omitempty"`
	Status         string           `json:"status"`
}
