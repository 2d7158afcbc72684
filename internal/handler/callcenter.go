package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
	"github.com/segyhp/pledge-callcenter/pkg/response"
)

// Service is the call-center behaviour the HTTP layer exposes
type Service interface {
	PreviewSchedule(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.SchedulePreviewResponse, error)
	CreatePaymentPlan(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.CreatePaymentPlanResponse, error)
	CancelPaymentPlan(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error)
	PreviewNotification(ctx context.Context, templateKey string, donorID int64) (*domain.NotificationPreview, error)
	SendNotification(ctx context.Context, request *domain.SendNotificationRequest) (*domain.SendNotificationResponse, error)
	GetCallQueue(ctx context.Context, filter domain.QueueFilter) ([]*domain.CallQueueEntry, error)
	RecordCall(ctx context.Context, request *domain.RecordCallRequest) (*domain.RecordCallResponse, error)
	GetAgentDashboard(ctx context.Context, agentID int64, day string) (*domain.AgentDashboard, error)
}

type CallCenterHandler struct {
	service   Service
	validator *validator.Validate
}

func NewCallCenterHandler(service Service) *CallCenterHandler {
	return &CallCenterHandler{
		service:   service,
		validator: newValidator(),
	}
}

// RegisterRoutes mounts the API on router under /api/v1
func (h *CallCenterHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/payment-plans/preview", h.PreviewSchedule).Methods(http.MethodPost)
	api.HandleFunc("/donors/{donorId:[0-9]+}/payment-plans", h.CreatePaymentPlan).Methods(http.MethodPost)
	api.HandleFunc("/payment-plans/{planId}/cancel", h.CancelPaymentPlan).Methods(http.MethodPost)

	api.HandleFunc("/notifications/preview", h.PreviewNotification).Methods(http.MethodGet)
	api.HandleFunc("/notifications/send", h.SendNotification).Methods(http.MethodPost)

	api.HandleFunc("/call-queue", h.GetCallQueue).Methods(http.MethodGet)
	api.HandleFunc("/call-queue/{entryId:[0-9]+}/calls", h.RecordCall).Methods(http.MethodPost)
	api.HandleFunc("/agents/{agentId:[0-9]+}/dashboard", h.GetAgentDashboard).Methods(http.MethodGet)
}

// PreviewSchedule handles POST /api/v1/payment-plans/preview
func (h *CallCenterHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePaymentPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(request); err != nil {
		response.FromError(w, "Invalid payment plan request", customError.WrapValidation(err))
		return
	}

	preview, err := h.service.PreviewSchedule(r.Context(), &request)
	if err != nil {
		response.FromError(w, "Failed to preview payment plan", err)
		return
	}

	response.Success(w, preview)
}

// CreatePaymentPlan handles POST /api/v1/donors/{donorId}/payment-plans
func (h *CallCenterHandler) CreatePaymentPlan(w http.ResponseWriter, r *http.Request) {
	donorID, err := pathInt(r, "donorId")
	if err != nil {
		response.BadRequest(w, "Invalid donor ID", err)
		return
	}

	var request domain.CreatePaymentPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	request.DonorID = donorID

	if err := h.validator.Struct(request); err != nil {
		response.FromError(w, "Invalid payment plan request", customError.WrapValidation(err))
		return
	}

	created, err := h.service.CreatePaymentPlan(r.Context(), &request)
	if err != nil {
		response.FromError(w, "Failed to create payment plan", err)
		return
	}

	response.Created(w, created)
}

// CancelPaymentPlan handles POST /api/v1/payment-plans/{planId}/cancel
func (h *CallCenterHandler) CancelPaymentPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		response.BadRequest(w, "Invalid plan ID", err)
		return
	}

	plan, err := h.service.CancelPaymentPlan(r.Context(), planID)
	if err != nil {
		response.FromError(w, "Failed to cancel payment plan", err)
		return
	}

	response.Success(w, plan)
}

// PreviewNotification handles GET /api/v1/notifications/preview?template_key=&donor_id=
func (h *CallCenterHandler) PreviewNotification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	templateKey := query.Get("template_key")
	if templateKey == "" {
		response.BadRequest(w, "template_key is required", nil)
		return
	}

	donorID, err := strconv.ParseInt(query.Get("donor_id"), 10, 64)
	if err != nil || donorID <= 0 {
		response.BadRequest(w, "donor_id must be a positive integer", err)
		return
	}

	preview, err := h.service.PreviewNotification(r.Context(), templateKey, donorID)
	if err != nil {
		response.FromError(w, "Failed to preview notification", err)
		return
	}

	response.Success(w, preview)
}

// SendNotification handles POST /api/v1/notifications/send
func (h *CallCenterHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var request domain.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(request); err != nil {
		response.FromError(w, "Invalid notification request", customError.WrapValidation(err))
		return
	}

	sent, err := h.service.SendNotification(r.Context(), &request)
	if err != nil {
		response.FromError(w, "Failed to send notification", err)
		return
	}

	response.Success(w, sent)
}

// GetCallQueue handles GET /api/v1/call-queue?status=&agent_id=&limit=&due=
func (h *CallCenterHandler) GetCallQueue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.QueueFilter{Status: query.Get("status")}

	var err error
	if v := query.Get("agent_id"); v != "" {
		if filter.AgentID, err = strconv.ParseInt(v, 10, 64); err != nil {
			response.BadRequest(w, "agent_id must be an integer", err)
			return
		}
	}
	if v := query.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			response.BadRequest(w, "limit must be an integer", err)
			return
		}
	}
	if v := query.Get("due"); v != "" {
		if filter.DueOnly, err = strconv.ParseBool(v); err != nil {
			response.BadRequest(w, "due must be true or false", err)
			return
		}
	}

	entries, err := h.service.GetCallQueue(r.Context(), filter)
	if err != nil {
		response.FromError(w, "Failed to load call queue", err)
		return
	}

	response.Success(w, entries)
}

// RecordCall handles POST /api/v1/call-queue/{entryId}/calls
func (h *CallCenterHandler) RecordCall(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathInt(r, "entryId")
	if err != nil {
		response.BadRequest(w, "Invalid queue entry ID", err)
		return
	}

	var request domain.RecordCallRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	request.EntryID = entryID

	if err := h.validator.Struct(request); err != nil {
		response.FromError(w, "Invalid call record", customError.WrapValidation(err))
		return
	}

	recorded, err := h.service.RecordCall(r.Context(), &request)
	if err != nil {
		response.FromError(w, "Failed to record call", err)
		return
	}

	response.Created(w, recorded)
}

// GetAgentDashboard handles GET /api/v1/agents/{agentId}/dashboard?date=YYYY-MM-DD
func (h *CallCenterHandler) GetAgentDashboard(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathInt(r, "agentId")
	if err != nil {
		response.BadRequest(w, "Invalid agent ID", err)
		return
	}

	dashboard, err := h.service.GetAgentDashboard(r.Context(), agentID, r.URL.Query().Get("date"))
	if err != nil {
		response.FromError(w, "Failed to load dashboard", err)
		return
	}

	response.Success(w, dashboard)
}

func pathInt(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
