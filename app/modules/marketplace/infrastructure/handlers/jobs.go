package marketplacehandlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/httpapi"
)

type createJobBody struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
}

func (h *MarketplaceHandlers) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var body createJobBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	job, err := h.service.CreateJob(r.Context(), marketplaceservice.CreateJobRequest{
		ClientID:    caller(r),
		Title:       body.Title,
		Description: body.Description,
		Budget:      body.Budget,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, job)
}

// HandleListJobs accepts ?status=, ?mine=true, ?limit= and ?offset=.
func (h *MarketplaceHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := httpapi.IntQuery(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := httpapi.IntQuery(r, "offset", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filter := marketplacedb.JobFilter{
		Status: marketplacedomain.JobStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if r.URL.Query().Get("mine") == "true" {
		me := caller(r)
		filter.ClientID = &me
	}

	jobs, err := h.service.ListJobs(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, jobs)
}

func (h *MarketplaceHandlers) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	details, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, details)
}

type placeBidBody struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

func (h *MarketplaceHandlers) HandlePlaceBid(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body placeBidBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	bid, err := h.service.PlaceBid(r.Context(), marketplaceservice.PlaceBidRequest{
		JobID:        jobID,
		FreelancerID: caller(r),
		Amount:       body.Amount,
		Message:      body.Message,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, bid)
}

func (h *MarketplaceHandlers) HandleListBids(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bids, err := h.service.ListBids(r.Context(), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, bids)
}

func (h *MarketplaceHandlers) HandleAcceptBid(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bidID, err := httpapi.UUIDParam(r, "bidID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	job, err := h.service.AcceptBid(r.Context(), caller(r), jobID, bidID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, job)
}

type milestoneBody struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Position int             `json:"position"`
}

func (h *MarketplaceHandlers) HandleAddMilestone(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body milestoneBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	milestone, err := h.service.AddMilestone(r.Context(), marketplaceservice.AddMilestoneRequest{
		ClientID: caller(r),
		JobID:    jobID,
		Title:    body.Title,
		Amount:   body.Amount,
		Position: body.Position,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, milestone)
}

func (h *MarketplaceHandlers) HandleReleaseMilestone(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	milestoneID, err := httpapi.UUIDParam(r, "milestoneID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	earning, err := h.service.ReleaseMilestone(r.Context(), caller(r), jobID, milestoneID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, earning)
}

func (h *MarketplaceHandlers) HandleCompleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	job, err := h.service.CompleteJob(r.Context(), caller(r), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, job)
}

func (h *MarketplaceHandlers) HandleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := httpapi.UUIDParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	job, err := h.service.CancelJob(r.Context(), caller(r), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, job)
}
