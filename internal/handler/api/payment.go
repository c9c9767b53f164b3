package api

import (
	"net/http"

	reqdto "staybook/internal/handler/dto/request"
	"staybook/internal/handler/httperr"
	"staybook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{
		paymentCommands: paymentCommands,
	}
}

// @Summary Report payment outcome
// @Description Apply a checkout outcome to its booking. Replays and
// @Description outcomes for unknown sessions are acknowledged without effect.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.PaymentOutcomeRequest true "Payment outcome"
// @Success 200 {object} map[string]string
// @Failure 400 {object} httperr.Response
// @Router /payments/outcome [post]
func (h *PaymentHandler) ReportOutcome(c *gin.Context) {
	var req reqdto.PaymentOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	outcome := commands.PaymentOutcome(req.Outcome)
	if err := h.paymentCommands.ReconcileOutcome(c.Request.Context(), req.SessionID, outcome); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
