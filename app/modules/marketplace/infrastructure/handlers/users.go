package marketplacehandlers

import (
	"net/http"

	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	"github.com/escrowhub/api/pkg/httpapi"
)

// HandleRegisterUser is the only unauthenticated marketplace write.
func (h *MarketplaceHandlers) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req marketplaceservice.RegisterUserRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, user)
}

func (h *MarketplaceHandlers) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}

func (h *MarketplaceHandlers) HandleRecordLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserFor(w, r)
	if !ok {
		return
	}

	user, err := h.service.RecordLogin(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}

type verifyBadgeBody struct {
	Badge marketplacedomain.BadgeType `json:"badge"`
}

// HandleVerifyBadge is mounted behind RequireAdmin.
func (h *MarketplaceHandlers) HandleVerifyBadge(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body verifyBadgeBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	badge, err := h.service.VerifyBadge(r.Context(), userID, body.Badge)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, badge)
}

type endorsementBody struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

func (h *MarketplaceHandlers) HandleAddEndorsement(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body endorsementBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	endorsement, err := h.service.AddEndorsement(r.Context(), marketplaceservice.AddEndorsementRequest{
		UserID:     userID,
		EndorserID: caller(r),
		Skill:      body.Skill,
		Rating:     body.Rating,
		Verified:   isAdmin(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, endorsement)
}

func (h *MarketplaceHandlers) HandleGetEarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserFor(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetEarningsSummary(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, summary)
}
