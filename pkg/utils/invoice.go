package utils

import "fmt"

// FormatInvoiceNo renders an invoice number the way it is printed: zero
// padded to eight digits, with a TRN prefix for training mode
func FormatInvoiceNo(training bool, no int64) string {
	if training {
		return fmt.Sprintf("TRN-%08d", no)
	}
	return fmt.Sprintf("%08d", no)
}
