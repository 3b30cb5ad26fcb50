package achievementhandlers

import (
	"github.com/go-chi/chi/v5"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
)

// Mount registers the achievement routes on r.
func (h *AchievementHandlers) Mount(r chi.Router, auth *authhandlers.Authenticator) {
	r.Get("/api/achievements", h.HandleCatalog)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/api/users/{userID}/achievements", h.HandleListUserAchievements)
	})
}
