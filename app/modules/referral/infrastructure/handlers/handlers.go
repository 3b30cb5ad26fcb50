package referralhandlers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referralservice "github.com/escrowhub/api/app/modules/referral/application"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/pkg/httpapi"
	"github.com/escrowhub/api/pkg/observability/attr"
	"github.com/escrowhub/api/pkg/timeparse"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultReportDays = 30
)

// ReferralHandlers serves the referral HTTP API and consumes the marketplace
// events that drive signups and conversions.
type ReferralHandlers struct {
	service referralservice.Service
	logger  *slog.Logger
	baseURL string
	times   *timeparse.Parser
	now     func() time.Time
}

// NewReferralHandlers creates a new ReferralHandlers. Link visitors are
// redirected to baseURL/signup.
func NewReferralHandlers(service referralservice.Service, logger *slog.Logger, baseURL string) *ReferralHandlers {
	return &ReferralHandlers{
		service: service,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		times:   timeparse.New(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var errorMappings = []httpapi.ErrorMapping{
	{Err: marketplacedb.ErrNotFound, Status: http.StatusNotFound},
	{Err: referraldomain.ErrInvalidCode, Status: http.StatusBadRequest},
	{Err: referraldomain.ErrUnknownCode, Status: http.StatusNotFound},
	{Err: referraldomain.ErrRewardNotFound, Status: http.StatusNotFound},
	{Err: referraldomain.ErrNoReferral, Status: http.StatusNotFound},
	{Err: referraldomain.ErrSelfReferral, Status: http.StatusConflict},
	{Err: referraldomain.ErrAlreadyReferred, Status: http.StatusConflict},
	{Err: referraldomain.ErrRewardAlreadyClaimed, Status: http.StatusConflict},
}

func (h *ReferralHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpapi.WriteServiceError(w, r, h.logger, err, errorMappings...)
}

// caller returns the authenticated user. Every /api/referrals route acts on
// the caller only.
func (h *ReferralHandlers) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// HandleRedirect records a click and sends the visitor to the signup page
// with the code attached. Unknown codes get a 404. A click that cannot be
// stored is logged and the visitor is redirected anyway.
func (h *ReferralHandlers) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if err := h.service.RecordClick(r.Context(), code, ip, r.UserAgent()); err != nil {
		if errors.Is(err, referraldomain.ErrUnknownCode) || errors.Is(err, referraldomain.ErrInvalidCode) {
			httpapi.WriteError(w, http.StatusNotFound, referraldomain.ErrUnknownCode.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to record referral click",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("code", code),
			attr.Error(err),
		)
	}

	target := h.baseURL + "/signup?ref=" + url.QueryEscape(code)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *ReferralHandlers) HandleGetLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	link, err := h.service.GetOrCreateLink(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, link)
}

func (h *ReferralHandlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, stats)
}

func (h *ReferralHandlers) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	dashboard, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, dashboard)
}

func (h *ReferralHandlers) HandleListRewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	rewards, err := h.service.ListRewards(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, rewards)
}

func (h *ReferralHandlers) HandleClaimReward(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	rewardID, err := httpapi.UUIDParam(r, "rewardID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reward, err := h.service.ClaimReward(r.Context(), userID, rewardID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, reward)
}

func (h *ReferralHandlers) HandleClaimAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	summary, err := h.service.ClaimAllRewards(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, summary)
}

func (h *ReferralHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := httpapi.IntQuery(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.service.TopReferrers(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, entries)
}

// HandleExportReport streams the XLSX report. since accepts a date or an
// expression like "2 weeks ago" and defaults to 30 days back.
func (h *ReferralHandlers) HandleExportReport(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	since := now.AddDate(0, 0, -defaultReportDays)
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := h.times.ParseSince(v, now)
		if err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		since = parsed
	}

	body, err := h.service.ExportReport(r.Context(), since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="referrals-`+since.Format("20060102")+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
