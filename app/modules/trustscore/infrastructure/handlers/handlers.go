package trustscorehandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoreservice "github.com/escrowhub/api/app/modules/trustscore/application"
	"github.com/escrowhub/api/pkg/httpapi"
)

// TrustScoreHandlers serves the trust score HTTP API.
type TrustScoreHandlers struct {
	service trustscoreservice.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewTrustScoreHandlers creates a new TrustScoreHandlers.
func NewTrustScoreHandlers(service trustscoreservice.Service, logger *slog.Logger) *TrustScoreHandlers {
	return &TrustScoreHandlers{
		service: service,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var errorMappings = []httpapi.ErrorMapping{
	{Err: marketplacedb.ErrNotFound, Status: http.StatusNotFound},
}

func (h *TrustScoreHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpapi.WriteServiceError(w, r, h.logger, err, errorMappings...)
}

func (h *TrustScoreHandlers) userParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return uuid.Nil, false
	}
	return userID, true
}

// HandleGetTrustScore returns the persisted score or the neutral default.
func (h *TrustScoreHandlers) HandleGetTrustScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetTrustScore(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

// HandleRecalculate is limited to the user themselves or an admin.
func (h *TrustScoreHandlers) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return
	}
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	if !ok || !claims.CanActFor(userID) {
		httpapi.WriteError(w, http.StatusForbidden, "cannot act for this user")
		return
	}
	result, err := h.service.CalculateTrustScore(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *TrustScoreHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return
	}
	history, err := h.service.GetTrustScoreHistory(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, history)
}

func (h *TrustScoreHandlers) HandleGetHistoryChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return
	}
	png, err := h.service.RenderHistoryChart(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleRunDecay runs a decay sweep synchronously. Mounted behind RequireAdmin.
func (h *TrustScoreHandlers) HandleRunDecay(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ApplyDecayToInactive(r.Context(), h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, summary)
}
