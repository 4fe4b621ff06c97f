package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/trio-connect/internal/admin"
)

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.core.Admin.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type reportView struct {
	ID         uint64 `json:"id"`
	ReporterID int64  `json:"reporter_id"`
	ReportedID int64  `json:"reported_id"`
	Reason     string `json:"reason"`
	CreatedAt  int64  `json:"created_at"`
}

func (h *Handlers) pendingReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.core.Admin.PendingReports(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, reportView{
			ID:         rep.ID,
			ReporterID: rep.ReporterID,
			ReportedID: rep.ReportedID,
			Reason:     rep.Reason,
			CreatedAt:  rep.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": views})
}

func (h *Handlers) reviewReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "report id must be numeric"})
		return
	}
	if err := h.core.Admin.ReviewReport(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviewed": id})
}

// userView is the admin lookup result. Unlike a browse card it includes
// the handle and the credit counters.
type userView struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Handle        string  `json:"handle,omitempty"`
	Age           *int    `json:"age,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	City          string  `json:"city,omitempty"`
	Country       string  `json:"country,omitempty"`
	Registered    bool    `json:"registered"`
	ReferralCount int64   `json:"referral_count"`
	FreeUnlocks   int64   `json:"free_unlocks"`
}

func (h *Handlers) findUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.core.Admin.FindUser(r.Context(), chi.URLParam(r, "ident"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view := userView{
		ID:            u.ID,
		Name:          u.Name,
		Age:           u.Age,
		Gender:        u.Gender,
		City:          u.City,
		Country:       u.Country,
		Registered:    u.Registered,
		ReferralCount: u.ReferralCount,
		FreeUnlocks:   u.FreeUnlocks,
	}
	view.Handle, _ = u.RevealableHandle()
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.core.Admin.DeleteUser(r.Context(), chi.URLParam(r, "ident"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handlers) audience(w http.ResponseWriter, r *http.Request) {
	ids, err := h.core.Admin.Audience(r.Context(), chi.URLParam(r, "audience"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(ids)})
}

type broadcastBody struct {
	Audience string `json:"audience"`
	Text     string `json:"text"`
}

func (h *Handlers) broadcast(w http.ResponseWriter, r *http.Request) {
	var body broadcastBody
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed broadcast payload"})
		return
	}
	if body.Audience == "" {
		body.Audience = admin.AudienceAll
	}
	res, err := h.core.Admin.Broadcast(r.Context(), body.Audience, body.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
