package rpc

// UserRequest addresses one user.
type UserRequest struct {
	UserID int64 `json:"user_id"`
}

type EnsureUserRequest struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Handle     string `json:"handle,omitempty"`
	StartParam string `json:"start_param,omitempty"`
}

// Profile is the owner's view of their profile, handle included.
type Profile struct {
	UserID        int64    `json:"user_id"`
	Name          string   `json:"name"`
	Handle        string   `json:"handle,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	PhotoRef      string   `json:"photo_ref,omitempty"`
	Registered    bool     `json:"registered"`
	FreeUnlocks   int64    `json:"free_unlocks"`
	ReferralCount int64    `json:"referral_count"`
}

type ProfileResponse struct {
	Profile          *Profile `json:"profile"`
	JustRegistered   bool     `json:"just_registered,omitempty"`
	ReferralCredited bool     `json:"referral_credited,omitempty"`
}

// UpdateProfileRequest sets any subset of the profile fields.
type UpdateProfileRequest struct {
	UserID    int64    `json:"user_id"`
	Age       *int     `json:"age,omitempty"`
	Gender    *string  `json:"gender,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PhotoRef  *string  `json:"photo_ref,omitempty"`
}

// Card is how a user is shown to others. It never carries the handle.
type Card struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	PhotoRef string `json:"photo_ref,omitempty"`
}

type StartBrowseRequest struct {
	UserID int64  `json:"user_id"`
	Filter string `json:"filter"`
}

// BrowseRequest moves past the card the token points at.
type BrowseRequest struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type BrowseResponse struct {
	Candidate *Card  `json:"candidate,omitempty"`
	Token     string `json:"token,omitempty"`
	Exhausted bool   `json:"exhausted"`
}

// Outcomes of a browse action.
const (
	OutcomeRequested        = "requested"
	OutcomeAlreadyRequested = "already_requested"
	OutcomeDisliked         = "disliked"
	OutcomeReported         = "reported"
	OutcomeSkipped          = "skipped"
)

// Cancel in Purpose or Reason skips the card without acting on it.
const Cancel = "cancel"

type LikeRequest struct {
	UserID   int64  `json:"user_id"`
	TargetID int64  `json:"target_id"`
	Purpose  string `json:"purpose"`
	Token    string `json:"token"`
}

type TargetRequest struct {
	UserID   int64  `json:"user_id"`
	TargetID int64  `json:"target_id"`
	Token    string `json:"token"`
}

type ReportRequest struct {
	UserID   int64  `json:"user_id"`
	TargetID int64  `json:"target_id"`
	Reason   string `json:"reason"`
	Text     string `json:"text,omitempty"`
	Token    string `json:"token"`
}

// ActionResponse reports what happened and serves the next card.
type ActionResponse struct {
	Outcome string          `json:"outcome"`
	Next    *BrowseResponse `json:"next"`
}

type ListRequestsRequest struct {
	UserID          int64   `json:"user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

type RequestCard struct {
	RequestID     uint64 `json:"request_id"`
	Requester     *Card  `json:"requester"`
	Purpose       string `json:"purpose"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

type ListRequestsResponse struct {
	Requests            []*RequestCard `json:"requests"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

type RespondRequest struct {
	UserID    int64  `json:"user_id"`
	RequestID uint64 `json:"request_id"`
	Accept    bool   `json:"accept"`
}

type RespondResponse struct {
	Status       string `json:"status"`
	MatchID      uint64 `json:"match_id,omitempty"`
	MatchCreated bool   `json:"match_created,omitempty"`
}

type MatchCard struct {
	MatchID     uint64 `json:"match_id"`
	Counterpart *Card  `json:"counterpart"`
	Purpose     string `json:"purpose"`
	Unlocked    bool   `json:"unlocked"`
	Handle      string `json:"handle,omitempty"`
}

type MatchesResponse struct {
	Matches []*MatchCard `json:"matches"`
}

type UnlockRequest struct {
	UserID  int64  `json:"user_id"`
	MatchID uint64 `json:"match_id"`
}

// UnlockResponse carries precondition failures as FailureReason rather than
// as a gRPC error.
type UnlockResponse struct {
	Success         bool   `json:"success"`
	Handle          string `json:"handle,omitempty"`
	AlreadyUnlocked bool   `json:"already_unlocked,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

type InvoiceResponse struct {
	InvoiceID        string `json:"invoice_id,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
	Currency         string `json:"currency,omitempty"`
	CorrelationToken string `json:"correlation_token,omitempty"`
	FailureReason    string `json:"failure_reason,omitempty"`
}

// PaymentRequest is a provider callback, before (pre-checkout) or after a charge.
type PaymentRequest struct {
	ChargeID         string `json:"charge_id,omitempty"`
	PayerID          int64  `json:"payer_id"`
	MatchID          uint64 `json:"match_id,omitempty"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	CorrelationToken string `json:"correlation_token"`
}

type PreCheckoutResponse struct {
	Ok            bool   `json:"ok"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type ReferralResponse struct {
	Link        string `json:"link"`
	Count       int64  `json:"count"`
	FreeUnlocks int64  `json:"free_unlocks"`
	UntilNext   int64  `json:"until_next"`
}
