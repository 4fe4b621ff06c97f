// Package events defines what the matchmaking core tells the outside world.
// Rendering and delivery belong to the transport; the core only emits payloads.
package events

import "context"

// Event is a payload routed by name.
type Event interface {
	Name() string
}

// Publisher delivers events to the transport collaborator.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// RequestReceived tells the target that someone liked them.
type RequestReceived struct {
	TargetID      int64  `json:"target_id"`
	RequestID     uint64 `json:"request_id"`
	RequesterID   int64  `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Purpose       string `json:"purpose"`
}

func (RequestReceived) Name() string { return "request.received" }

// RequestRejected tells the requester their like was declined.
type RequestRejected struct {
	RequesterID int64  `json:"requester_id"`
	RequestID   uint64 `json:"request_id"`
}

func (RequestRejected) Name() string { return "request.rejected" }

// MatchCreated is sent once to each participant.
type MatchCreated struct {
	ParticipantID       int64  `json:"participant_id"`
	CounterpartID       int64  `json:"counterpart_id"`
	MatchID             uint64 `json:"match_id"`
	Purpose             string `json:"purpose"`
	FreeUnlockAvailable bool   `json:"free_unlock_available"`
}

func (MatchCreated) Name() string { return "match.created" }

// ReportFiled goes to the administrative channel.
type ReportFiled struct {
	ReportID   uint64 `json:"report_id"`
	ReporterID int64  `json:"reporter_id"`
	ReportedID int64  `json:"reported_id"`
	Reason     string `json:"reason"`
}

func (ReportFiled) Name() string { return "report.filed" }

// UnlockResult reports the outcome of an unlock attempt to the caller.
type UnlockResult struct {
	UserID         int64  `json:"user_id"`
	MatchID        uint64 `json:"match_id"`
	Method         string `json:"method"`
	Success        bool   `json:"success"`
	RevealedHandle string `json:"revealed_handle,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
}

func (UnlockResult) Name() string { return "unlock.result" }

// InvoiceRequested asks the payment collaborator to bill a paid unlock.
type InvoiceRequested struct {
	InvoiceID        string `json:"invoice_id"`
	MatchID          uint64 `json:"match_id"`
	PayerID          int64  `json:"payer_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	CorrelationToken string `json:"correlation_token"`
}

func (InvoiceRequested) Name() string { return "payment.invoice_requested" }

// Broadcast is one copy of an administrative announcement.
type Broadcast struct {
	RecipientID int64  `json:"recipient_id"`
	Text        string `json:"text"`
}

func (Broadcast) Name() string { return "admin.broadcast" }
