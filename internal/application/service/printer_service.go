package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/printer"
	"github.com/sangkips/fiscal-pos/pkg/utils"
	"github.com/shopspring/decimal"
)

// PrinterService handles receipt and reading formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	orderRepo   repository.OrderRepository
	fiscalRepo  repository.FiscalRepository
	header      entity.BusinessHeader
	printerType string
	width       int
	location    *time.Location
	log         *logger.Logger
}

// PrinterOptions configures the printed layout
type PrinterOptions struct {
	Type     string
	Width    int
	Location *time.Location
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	orderRepo repository.OrderRepository,
	fiscalRepo repository.FiscalRepository,
	header entity.BusinessHeader,
	opts PrinterOptions,
	log *logger.Logger,
) *PrinterService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &PrinterService{
		printer:     p,
		orderRepo:   orderRepo,
		fiscalRepo:  fiscalRepo,
		header:      header,
		printerType: opts.Type,
		width:       opts.Width,
		location:    opts.Location,
		log:         log.WithComponent("printer"),
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// PrintReceipt loads a finalized order and prints its receipt. The receipt
// is returned even when the printer fails so the caller can show it.
func (s *PrinterService) PrintReceipt(ctx context.Context, orderID uuid.UUID) (*entity.Receipt, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load order", err)
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	receipt := BuildReceipt(order, s.header, s.location)
	if err := s.printer.Print(FormatReceipt(receipt, s.width)); err != nil {
		s.log.Error("receipt print failed", "error", err, "order_id", orderID.String())
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// PrintReading prints an X or Z reading document
func (s *PrinterService) PrintReading(reading *entity.FiscalReading) error {
	if err := s.printer.Print(FormatReading(reading, s.width, s.location)); err != nil {
		s.log.Error("reading print failed", "error", err, "type", string(reading.Type))
		return fmt.Errorf("failed to print reading: %w", err)
	}
	return nil
}

// ReprintZReading prints a stored Z reading again
func (s *PrinterService) ReprintZReading(ctx context.Context, id uuid.UUID) (*entity.FiscalReading, error) {
	z, err := s.fiscalRepo.GetZReading(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load Z reading", err)
	}
	if z == nil || z.Document == nil {
		return nil, apperror.NewNotFoundError("Z reading")
	}
	return z.Document, s.PrintReading(z.Document)
}

// BuildReceipt composes the printable receipt of a finalized order
func BuildReceipt(o *entity.Order, header entity.BusinessHeader, loc *time.Location) *entity.Receipt {
	training := o.Mode == enum.ModeTraining
	r := &entity.Receipt{
		Header:         header,
		Training:       training,
		InvoiceNo:      utils.FormatInvoiceNo(training, o.InvoiceNo),
		Cashier:        o.CashierName,
		OrderType:      strings.ReplaceAll(o.OrderType.String(), "_", "-"),
		Total:          o.Total,
		Discount:       o.DiscountAmount,
		DiscountLabel:  discountLabel(o),
		AmountDue:      o.AmountDue,
		Tendered:       o.Tendered,
		Change:         o.Change,
		VATableSales:   o.VATableSales,
		VATAmount:      o.VATAmount,
		VATExemptSales: o.VATExemptSales,
		ZeroRatedSales: o.ZeroRatedSales,
		Status:         o.Status.String(),
	}
	if o.FinalizedAt != nil {
		r.Date = o.FinalizedAt.In(loc).Format("2006-01-02 15:04")
	}

	for _, e := range o.Entries {
		for _, item := range e.Items {
			r.Items = append(r.Items, entity.ReceiptItem{
				Name:      item.Name,
				Quantity:  e.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))),
			})
		}
	}
	for _, t := range o.Tenders {
		r.Payments = append(r.Payments, entity.ReceiptPayment{Type: t.PaymentType, Amount: t.Amount, ReferenceNo: t.ReferenceNo})
	}
	for _, b := range o.Beneficiaries {
		label := "SC"
		if b.Type == enum.BeneficiaryPWD {
			label = "PWD"
		}
		r.Beneficiaries = append(r.Beneficiaries, fmt.Sprintf("%s %s (%s)", label, b.Name, b.IDNumber))
	}
	return r
}

func discountLabel(o *entity.Order) string {
	switch o.DiscountKind {
	case enum.DiscountKindSeniorPWD:
		return "Senior/PWD Discount"
	case enum.DiscountKindPromo:
		return "Promo " + o.DiscountCode
	case enum.DiscountKindOther:
		return "Discount " + o.DiscountRate.String() + "%"
	case enum.DiscountKindCoupon:
		return "Coupon " + o.DiscountCode
	}
	return ""
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)
	writeHeader(doc, r.Header)

	if r.Training {
		doc.SetAlign(printer.AlignCenter).
			SetBold(true).
			Text("TRAINING MODE").
			SetBold(false)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date).
		KeyValue("Type:", r.OrderType)
	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Status != enum.OrderStatusComplete.String() {
		doc.KeyValue("Status:", strings.ToUpper(r.Status))
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice.StringFixed(2))
		}
	}

	doc.Separator('-')

	doc.Amount("Total:", r.Total)
	if r.DiscountLabel != "" {
		doc.Amount(r.DiscountLabel+":", r.Discount.Neg())
	}
	doc.SetBold(true).
		Amount("AMOUNT DUE:", r.AmountDue).
		SetBold(false)
	for _, p := range r.Payments {
		doc.Amount(p.Type+":", p.Amount)
		if p.ReferenceNo != "" {
			doc.Text("  Ref: " + p.ReferenceNo)
		}
	}
	doc.Amount("Change:", r.Change)

	doc.Separator('-')

	doc.Amount("VATable Sales:", r.VATableSales).
		Amount("VAT Amount:", r.VATAmount).
		Amount("VAT-Exempt Sales:", r.VATExemptSales).
		Amount("Zero-Rated Sales:", r.ZeroRatedSales)
	for _, b := range r.Beneficiaries {
		doc.Text(b)
	}

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed()
	if r.Training {
		doc.Text("THIS DOCUMENT IS NOT VALID FOR CLAIM OF INPUT TAX")
	} else {
		doc.Text("THIS SERVES AS AN OFFICIAL RECEIPT")
	}
	doc.LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// FormatReading converts an X or Z reading into ESC/POS bytes.
func FormatReading(r *entity.FiscalReading, width int, loc *time.Location) []byte {
	doc := printer.NewDocument(width)
	writeHeader(doc, r.Header)

	title := "X-READING"
	if r.Type == entity.ReadingZ {
		title = "Z-READING"
	}
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text(title)
	if r.Mode == enum.ModeTraining {
		doc.Text("TRAINING MODE")
	}
	doc.SetBold(false).
		SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Business date:", r.BusinessDate).
		KeyValue("From:", r.PeriodStart.In(loc).Format("2006-01-02 15:04")).
		KeyValue("To:", r.PeriodEnd.In(loc).Format("2006-01-02 15:04"))
	if r.CashierName != "" {
		doc.KeyValue("Cashier:", r.CashierName)
	}
	doc.KeyValue("Reset counter:", fmt.Sprint(r.ResetCounter)).
		KeyValue("Z counter:", fmt.Sprint(r.ZCounter)).
		KeyValue("Beg. invoice:", fmt.Sprint(r.BeginInvoiceNo)).
		KeyValue("End invoice:", fmt.Sprint(r.EndInvoiceNo)).
		KeyValue("Transactions:", fmt.Sprint(r.TransactionCount))

	doc.Separator('-')

	doc.Amount("Gross sales:", r.GrossSales)
	discountRow := func(label string, line entity.DiscountLine) {
		if line.Count > 0 || !line.Amount.IsZero() {
			doc.Amount(fmt.Sprintf("%s (%d):", label, line.Count), line.Amount)
		}
	}
	discountRow("Senior", r.Discounts.Senior)
	discountRow("PWD", r.Discounts.PWD)
	discountRow("Promo", r.Discounts.Promo)
	discountRow("Coupon", r.Discounts.Coupon)
	discountRow("Other", r.Discounts.Other)
	doc.Amount("Total discounts:", r.Discounts.Total.Amount)
	if r.VoidCount > 0 {
		doc.Amount(fmt.Sprintf("Voids (%d):", r.VoidCount), r.VoidAmount)
	}
	if r.RefundCount > 0 {
		doc.Amount(fmt.Sprintf("Refunds (%d):", r.RefundCount), r.RefundAmount)
	}
	doc.SetBold(true).
		Amount("NET SALES:", r.NetSales).
		SetBold(false)

	doc.Separator('-')

	doc.Amount("VATable Sales:", r.VATableSales).
		Amount("VAT Amount:", r.VATAmount).
		Amount("VAT-Exempt Sales:", r.VATExemptSales).
		Amount("Zero-Rated Sales:", r.ZeroRatedSales)

	doc.Separator('-')

	for _, p := range r.Payments {
		doc.Amount(p.Type+":", p.Amount)
	}
	if r.WithdrawalCount > 0 {
		doc.Amount(fmt.Sprintf("Withdrawals (%d):", r.WithdrawalCount), r.WithdrawalAmount)
	}
	doc.Amount("Opening fund:", r.OpeningFund).
		Amount("Expected cash:", r.ExpectedCash)
	if r.DeclaredCash != nil {
		doc.Amount("Declared cash:", *r.DeclaredCash)
	}
	if r.ShortOver != nil {
		doc.Amount("Short/Over:", *r.ShortOver)
	}

	doc.Separator('-')

	doc.Amount("Accum. before:", r.AccumulatedBefore).
		Amount("Accum. after:", r.AccumulatedAfter)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

func writeHeader(doc *printer.Document, h entity.BusinessHeader) {
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(h.Name).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if h.Operator != "" {
		doc.Text(h.Operator)
	}
	if h.Address != "" {
		doc.Text(h.Address)
	}
	if h.TIN != "" {
		doc.TextF("VAT REG TIN: %s", h.TIN)
	}
	if h.MIN != "" {
		doc.TextF("MIN: %s", h.MIN)
	}
	if h.SerialNo != "" {
		doc.TextF("SN: %s", h.SerialNo)
	}
	if h.PermitNo != "" {
		doc.TextF("PTU: %s", h.PermitNo)
	}
}
