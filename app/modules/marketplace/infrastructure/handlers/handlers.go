package marketplacehandlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/httpapi"
)

// MarketplaceHandlers serves the marketplace HTTP API.
type MarketplaceHandlers struct {
	service marketplaceservice.Service
	logger  *slog.Logger
}

// NewMarketplaceHandlers creates a new MarketplaceHandlers.
func NewMarketplaceHandlers(service marketplaceservice.Service, logger *slog.Logger) *MarketplaceHandlers {
	return &MarketplaceHandlers{service: service, logger: logger}
}

var errorMappings = []httpapi.ErrorMapping{
	{Err: marketplacedb.ErrNotFound, Status: http.StatusNotFound},
	{Err: marketplacedomain.ErrNotJobParty, Status: http.StatusForbidden},
	{Err: marketplacedomain.ErrFreelancerRequired, Status: http.StatusForbidden},
	{Err: marketplacedomain.ErrUserAlreadyExists, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrBidAlreadyExists, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrAlreadyReviewed, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrJobNotOpen, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrJobNotCompleted, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrInvalidTransition, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrBidNotPending, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrDisputeNotOpen, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrMilestoneReleased, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrNoFreelancer, Status: http.StatusConflict},
	{Err: marketplacedomain.ErrInvalidRating, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrInvalidAmount, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrInvalidBadgeType, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrInvalidStatus, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrInvalidResolution, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrOwnJob, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrSelfEndorsement, Status: http.StatusUnprocessableEntity},
	{Err: marketplacedomain.ErrMissingField, Status: http.StatusUnprocessableEntity},
}

func (h *MarketplaceHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpapi.WriteServiceError(w, r, h.logger, err, errorMappings...)
}

// caller returns the authenticated user id. RequireAuth guarantees claims
// are present on every route that calls it.
func caller(r *http.Request) uuid.UUID {
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil
	}
	return claims.UserID
}

// pathUserFor parses {userID} and checks the caller may act for that user.
func pathUserFor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := httpapi.UUIDParam(r, "userID")
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, false
	}
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	if !ok || !claims.CanActFor(userID) {
		httpapi.WriteError(w, http.StatusForbidden, "cannot act for this user")
		return uuid.Nil, false
	}
	return userID, true
}

// isAdmin reports whether the caller holds the admin role. Admin endorsements
// are recorded as verified.
func isAdmin(r *http.Request) bool {
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	return ok && claims.IsAdmin()
}
