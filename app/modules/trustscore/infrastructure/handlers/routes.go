package trustscorehandlers

import (
	"github.com/go-chi/chi/v5"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
)

// Mount registers the trust score routes on r.
func (h *TrustScoreHandlers) Mount(r chi.Router, auth *authhandlers.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/api/users/{userID}/trust-score", h.HandleGetTrustScore)
		r.Post("/api/users/{userID}/trust-score/recalculate", h.HandleRecalculate)
		r.Get("/api/users/{userID}/trust-score/history", h.HandleGetHistory)
		r.Get("/api/users/{userID}/trust-score/history.png", h.HandleGetHistoryChart)

		r.Group(func(r chi.Router) {
			r.Use(authhandlers.RequireAdmin)
			r.Post("/api/admin/trust-score/decay", h.HandleRunDecay)
		})
	})
}
