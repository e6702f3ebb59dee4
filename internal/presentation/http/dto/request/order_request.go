package request

// ReasonRequest carries the reason for a void, refund or unpost
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}
