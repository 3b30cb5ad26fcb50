package marketplacehandlers

import (
	"github.com/go-chi/chi/v5"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
)

// Mount registers the marketplace routes on r.
func (h *MarketplaceHandlers) Mount(r chi.Router, auth *authhandlers.Authenticator) {
	r.Post("/api/users", h.HandleRegisterUser)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/api/faqs", h.HandleListFAQs)
		r.Get("/api/users/{userID}", h.HandleGetUser)
		r.Post("/api/users/{userID}/login", h.HandleRecordLogin)
		r.Post("/api/users/{userID}/endorsements", h.HandleAddEndorsement)
		r.Get("/api/users/{userID}/earnings", h.HandleGetEarnings)

		r.Post("/api/jobs", h.HandleCreateJob)
		r.Get("/api/jobs", h.HandleListJobs)
		r.Get("/api/jobs/{jobID}", h.HandleGetJob)
		r.Post("/api/jobs/{jobID}/bids", h.HandlePlaceBid)
		r.Get("/api/jobs/{jobID}/bids", h.HandleListBids)
		r.Post("/api/jobs/{jobID}/bids/{bidID}/accept", h.HandleAcceptBid)
		r.Post("/api/jobs/{jobID}/milestones", h.HandleAddMilestone)
		r.Post("/api/jobs/{jobID}/milestones/{milestoneID}/release", h.HandleReleaseMilestone)
		r.Post("/api/jobs/{jobID}/complete", h.HandleCompleteJob)
		r.Post("/api/jobs/{jobID}/cancel", h.HandleCancelJob)
		r.Post("/api/jobs/{jobID}/reviews", h.HandleSubmitReview)
		r.Post("/api/jobs/{jobID}/disputes", h.HandleOpenDispute)

		r.Group(func(r chi.Router) {
			r.Use(authhandlers.RequireAdmin)
			r.Post("/api/users/{userID}/badges", h.HandleVerifyBadge)
			r.Post("/api/disputes/{disputeID}/resolve", h.HandleResolveDispute)
			r.Post("/api/faqs", h.HandleCreateFAQ)
		})
	})
}
