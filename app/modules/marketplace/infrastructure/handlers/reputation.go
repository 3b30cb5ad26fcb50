package marketplacehandlers

import (
	"net/http"

	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	"github.com/escrowhub/api/pkg/httpapi"
)

type reviewBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *MarketplaceHandlers) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body reviewBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	review, err := h.service.SubmitReview(r.Context(), marketplaceservice.SubmitReviewRequest{
		JobID:      jobID,
		ReviewerID: caller(r),
		Rating:     body.Rating,
		Comment:    body.Comment,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, review)
}

type disputeBody struct {
	Reason string `json:"reason"`
}

func (h *MarketplaceHandlers) HandleOpenDispute(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body disputeBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	dispute, err := h.service.OpenDispute(r.Context(), marketplaceservice.OpenDisputeRequest{
		JobID:    jobID,
		RaisedBy: caller(r),
		Reason:   body.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, dispute)
}

type resolveBody struct {
	Status marketplacedomain.DisputeStatus `json:"status"`
}

// HandleResolveDispute is mounted behind RequireAdmin.
func (h *MarketplaceHandlers) HandleResolveDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := httpapi.UUIDParam(r, "disputeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body resolveBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	dispute, err := h.service.ResolveDispute(r.Context(), disputeID, body.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, dispute)
}
