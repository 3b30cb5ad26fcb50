package marketplacehandlers

import (
	"net/http"

	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	"github.com/escrowhub/api/pkg/httpapi"
)

func (h *MarketplaceHandlers) HandleListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.service.ListFAQs(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, faqs)
}

func (h *MarketplaceHandlers) HandleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	var req marketplaceservice.CreateFAQRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	faq, err := h.service.CreateFAQ(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, faq)
}
