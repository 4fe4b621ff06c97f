package matchmaking

import (
	"context"

	svcErr "github.com/oggyb/trio-connect/internal/errors"
	"github.com/oggyb/trio-connect/internal/payment"
	pb "github.com/oggyb/trio-connect/internal/rpc"
	"github.com/oggyb/trio-connect/internal/unlock"
)

// UnlockFree spends a free unlock on a match. Precondition failures come back
// as FailureReason, not as an error.
func (s *Service) UnlockFree(ctx context.Context, req *pb.UnlockRequest) (*pb.UnlockResponse, error) {
	s.appCtx.Logger.Debug("UnlockFree called", "user", req.UserID, "match", req.MatchID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	out, err := s.core.Unlocks.UnlockFree(ctx, req.UserID, req.MatchID)
	return unlockResponse(out, err)
}

// StartPaidUnlock creates an invoice for the fixed unlock price.
func (s *Service) StartPaidUnlock(ctx context.Context, req *pb.UnlockRequest) (*pb.InvoiceResponse, error) {
	s.appCtx.Logger.Debug("StartPaidUnlock called", "user", req.UserID, "match", req.MatchID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	inv, err := s.core.Unlocks.StartPaid(ctx, req.UserID, req.MatchID)
	if reason := unlock.Reason(err); reason != "" {
		return &pb.InvoiceResponse{FailureReason: reason}, nil
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.InvoiceResponse{
		InvoiceID:        inv.ID,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		CorrelationToken: inv.Token,
	}, nil
}

// PreCheckout answers the provider's "may I charge this?" question.
func (s *Service) PreCheckout(ctx context.Context, req *pb.PaymentRequest) (*pb.PreCheckoutResponse, error) {
	err := s.core.Unlocks.PreCheckout(ctx, confirmationFrom(req))
	if reason := unlock.Reason(err); reason != "" {
		return &pb.PreCheckoutResponse{FailureReason: reason}, nil
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.PreCheckoutResponse{Ok: true}, nil
}

// ConfirmPayment grants a paid unlock after a successful charge.
func (s *Service) ConfirmPayment(ctx context.Context, req *pb.PaymentRequest) (*pb.UnlockResponse, error) {
	s.appCtx.Logger.Debug("ConfirmPayment called", "payer", req.PayerID, "charge", req.ChargeID)
	out, err := s.core.Unlocks.ConfirmPayment(ctx, confirmationFrom(req))
	return unlockResponse(out, err)
}

func confirmationFrom(req *pb.PaymentRequest) payment.Confirmation {
	return payment.Confirmation{
		ChargeID: req.ChargeID,
		PayerID:  req.PayerID,
		MatchID:  req.MatchID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Token:    req.CorrelationToken,
	}
}

func unlockResponse(out unlock.Outcome, err error) (*pb.UnlockResponse, error) {
	if reason := unlock.Reason(err); reason != "" {
		resp := &pb.UnlockResponse{AlreadyUnlocked: out.AlreadyUnlocked, FailureReason: reason}
		if out.AlreadyUnlocked {
			resp.Handle = out.Handle
		}
		return resp, nil
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.UnlockResponse{Success: true, Handle: out.Handle}, nil
}
