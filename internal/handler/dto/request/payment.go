package request

type PaymentOutcomeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Outcome   string `json:"outcome" binding:"required,oneof=success cancel error"`
}
