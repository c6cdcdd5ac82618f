package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/donation"
	"github.com/platewise/platewise/internal/email"
	"github.com/platewise/platewise/internal/foodtype"
	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/push"
	"github.com/platewise/platewise/internal/store"
	"github.com/platewise/platewise/internal/websocket"
)

type DonationHandler struct {
	donationStore *store.DonationStore
	accountStore  *store.AccountStore
	hub           *websocket.Hub
	notifier      *push.Notifier
	emailClient   *email.Client
	logger        *slog.Logger
}

func NewDonationHandler(
	ds *store.DonationStore,
	as *store.AccountStore,
	hub *websocket.Hub,
	notifier *push.Notifier,
	ec *email.Client,
	logger *slog.Logger,
) *DonationHandler {
	return &DonationHandler{
		donationStore: ds,
		accountStore:  as,
		hub:           hub,
		notifier:      notifier,
		emailClient:   ec,
		logger:        logger,
	}
}

func (h *DonationHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// donationView decorates a donation with the expiring-soon flag the
// dashboards highlight. The flag is computed per request, never stored.
type donationView struct {
	model.Donation
	ExpiringSoon bool `json:"expiring_soon"`
}

func toViews(donations []model.Donation, now time.Time) []donationView {
	views := make([]donationView, 0, len(donations))
	for _, d := range donations {
		views = append(views, donationView{
			Donation:     d,
			ExpiringSoon: d.Status == model.DonationAvailable && donation.ExpiringSoon(d.ExpiryDate, now),
		})
	}
	return views
}

// List handles GET /api/donations: every donation, newest first.
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	donations, err := h.donationStore.List()
	if err != nil {
		h.logger.Error("list donations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	writeJSON(w, http.StatusOK, toViews(donations, time.Now()))
}

// Available handles GET /api/donations/available?q=: available donations
// matching the search term. An empty term returns all available.
func (h *DonationHandler) Available(w http.ResponseWriter, r *http.Request) {
	donations, err := h.donationStore.SearchAvailable(r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search donations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search donations")
		return
	}
	writeJSON(w, http.StatusOK, toViews(donations, time.Now()))
}

// Mine handles GET /api/donations/mine: the authenticated donor's own
// donations, matched by account email.
func (h *DonationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountStore.GetByID(auth.AccountID(r.Context()))
	if err != nil || account == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	donations, err := h.donationStore.ListByDonorEmail(account.Email)
	if err != nil {
		h.logger.Error("list donor donations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	writeJSON(w, http.StatusOK, toViews(donations, time.Now()))
}

type donationRequest struct {
	DonorName    string `json:"donor_name"`
	DonorPhone   string `json:"donor_phone"`
	DonorAddress string `json:"donor_address"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	FoodType     string `json:"food_type"`
	Quantity     string `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
}

// Create handles POST /api/donations. All fields are required; a failed
// validation leaves the registry untouched.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields := []*string{
		&req.DonorName, &req.DonorPhone, &req.DonorAddress, &req.Location,
		&req.Description, &req.FoodType, &req.Quantity, &req.ExpiryDate,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			writeError(w, http.StatusBadRequest, "please fill in all required fields")
			return
		}
	}

	if _, err := time.Parse("2006-01-02", req.ExpiryDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid expiry date")
		return
	}

	account, err := h.accountStore.GetByID(auth.AccountID(r.Context()))
	if err != nil || account == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := h.donationStore.Create(store.DonationDraft{
		DonorName:    req.DonorName,
		DonorPhone:   req.DonorPhone,
		DonorAddress: req.DonorAddress,
		DonorEmail:   account.Email,
		Location:     req.Location,
		Description:  req.Description,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		h.logger.Error("create donation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create donation")
		return
	}

	h.broadcast(websocket.NewMessage("donation", "created", created.ID, nil))
	if h.notifier != nil {
		go h.notifier.DonationCreated(created)
	}

	writeJSON(w, http.StatusCreated, created)
}

type claimRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Claim handles POST /api/donations/{id}/claim. The transition is
// guarded in the store; a donation that is already claimed keeps its
// original claim record.
func (h *DonationHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "please fill in all required fields")
		return
	}

	claimed, err := h.donationStore.Claim(id, req.Name, req.Phone)
	if errors.Is(err, store.ErrAlreadyClaimed) {
		writeError(w, http.StatusConflict, "donation already claimed")
		return
	}
	if err != nil {
		h.logger.Error("claim donation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to claim donation")
		return
	}
	if claimed == nil {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}

	h.broadcast(websocket.NewMessage("donation", "claimed", claimed.ID, nil))
	if h.notifier != nil {
		go h.notifier.DonationClaimed(claimed)
	}
	if h.emailClient != nil && h.emailClient.Configured() && claimed.DonorEmail != "" {
		go func() {
			if err := h.emailClient.SendClaimNotice(claimed.DonorEmail, claimed); err != nil {
				h.logger.Error("send claim notice", "error", err)
			}
		}()
	}

	writeJSON(w, http.StatusOK, claimed)
}

type statsResponse struct {
	*store.Stats
	ExpiringSoon int `json:"expiring_soon"`
}

// Stats handles GET /api/stats: the admin dashboard aggregates plus the
// count of available donations expiring within the highlight window.
func (h *DonationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.donationStore.Stats()
	if err != nil {
		h.logger.Error("donation stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	donations, err := h.donationStore.List()
	if err != nil {
		h.logger.Error("list donations for stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Stats:        stats,
		ExpiringSoon: donation.CountExpiringSoon(donations, time.Now()),
	})
}

// SuggestType handles GET /api/donations/suggest-type?description=:
// proposes a food-type label for the donation form.
func (h *DonationHandler) SuggestType(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	writeJSON(w, http.StatusOK, map[string]string{"food_type": foodtype.Suggest(description)})
}
