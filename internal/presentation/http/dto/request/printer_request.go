package request

// PrintReceiptRequest is the request body for printing a receipt.
type PrintReceiptRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}
