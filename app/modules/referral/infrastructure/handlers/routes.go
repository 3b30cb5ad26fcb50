package referralhandlers

import (
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
)

// Mount registers the referral routes on r. The public redirect is limited
// to one click per second per IP with a burst of 5.
func (h *ReferralHandlers) Mount(r chi.Router, auth *authhandlers.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authhandlers.RateLimitMiddleware(authhandlers.NewIPRateLimiter(rate.Limit(1), 5)))
		r.Get("/r/{code}", h.HandleRedirect)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/api/referrals/link", h.HandleGetLink)
		r.Get("/api/referrals/stats", h.HandleGetStats)
		r.Get("/api/referrals/dashboard", h.HandleGetDashboard)
		r.Get("/api/referrals/rewards", h.HandleListRewards)
		r.Post("/api/referrals/rewards/claim-all", h.HandleClaimAll)
		r.Post("/api/referrals/rewards/{rewardID}/claim", h.HandleClaimReward)
		r.Get("/api/referrals/leaderboard", h.HandleLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authhandlers.RequireAdmin)
			r.Get("/api/admin/referrals/report.xlsx", h.HandleExportReport)
		})
	})
}
