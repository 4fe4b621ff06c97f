package httpapi

import (
	"net/http"

	"github.com/oggyb/trio-connect/internal/payment"
	"github.com/oggyb/trio-connect/internal/unlock"
)

// paymentBody is the provider callback payload.
type paymentBody struct {
	ChargeID         string `json:"charge_id"`
	PayerID          int64  `json:"payer_id"`
	MatchID          uint64 `json:"match_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	CorrelationToken string `json:"correlation_token"`
}

func (b paymentBody) confirmation() payment.Confirmation {
	return payment.Confirmation{
		ChargeID: b.ChargeID,
		PayerID:  b.PayerID,
		MatchID:  b.MatchID,
		Amount:   b.Amount,
		Currency: b.Currency,
		Token:    b.CorrelationToken,
	}
}

type preCheckoutReply struct {
	Ok            bool   `json:"ok"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// preCheckout always answers 200 so the provider gets a clear yes or no.
func (h *Handlers) preCheckout(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed payment payload"})
		return
	}

	err := h.core.Unlocks.PreCheckout(r.Context(), body.confirmation())
	if reason := unlock.Reason(err); reason != "" {
		writeJSON(w, http.StatusOK, preCheckoutReply{FailureReason: reason})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preCheckoutReply{Ok: true})
}

type confirmReply struct {
	Success         bool   `json:"success"`
	MatchID         uint64 `json:"match_id,omitempty"`
	AlreadyUnlocked bool   `json:"already_unlocked,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// confirm grants the paid unlock. The handle itself goes to the payer as an
// unlock.result event, never back to the provider.
func (h *Handlers) confirm(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed payment payload"})
		return
	}

	out, err := h.core.Unlocks.ConfirmPayment(r.Context(), body.confirmation())
	if reason := unlock.Reason(err); reason != "" {
		writeJSON(w, http.StatusOK, confirmReply{
			MatchID:         out.MatchID,
			AlreadyUnlocked: out.AlreadyUnlocked,
			FailureReason:   reason,
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmReply{Success: true, MatchID: out.MatchID})
}
