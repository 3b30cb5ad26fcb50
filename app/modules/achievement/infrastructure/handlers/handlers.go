package achievementhandlers

import (
	"log/slog"
	"net/http"

	achievementservice "github.com/escrowhub/api/app/modules/achievement/application"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/httpapi"
)

// AchievementHandlers serves the achievement HTTP API and consumes the
// events that trigger evaluations.
type AchievementHandlers struct {
	service achievementservice.Service
	logger  *slog.Logger
}

func NewAchievementHandlers(service achievementservice.Service, logger *slog.Logger) *AchievementHandlers {
	return &AchievementHandlers{service: service, logger: logger}
}

var errorMappings = []httpapi.ErrorMapping{
	{Err: marketplacedb.ErrNotFound, Status: http.StatusNotFound},
}

func (h *AchievementHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, h.service.Catalog())
}

func (h *AchievementHandlers) HandleListUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		httpapi.WriteServiceError(w, r, h.logger, err, errorMappings...)
		return
	}
	views, err := h.service.ListUserAchievements(r.Context(), userID)
	if err != nil {
		httpapi.WriteServiceError(w, r, h.logger, err, errorMappings...)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, views)
}
