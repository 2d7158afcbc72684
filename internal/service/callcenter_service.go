package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/config"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/segyhp/pledge-callcenter/internal/messaging"
	"github.com/segyhp/pledge-callcenter/internal/notify"
	"github.com/segyhp/pledge-callcenter/internal/planner"
	"github.com/segyhp/pledge-callcenter/internal/repository"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
	"github.com/segyhp/pledge-callcenter/pkg/logger"
	"github.com/segyhp/pledge-callcenter/pkg/metrics"
	"github.com/segyhp/pledge-callcenter/pkg/utils"

	"github.com/sirupsen/logrus"
)

// DefaultSource tags notifications sent from the call-center UI.
const DefaultSource = "callcenter"

const maxQueueLimit = 200

// Repositories groups the stores the call-center service reads and writes.
type Repositories struct {
	Donors      repository.DonorRepository
	Plans       repository.PlanRepository
	Templates   repository.TemplateRepository
	CallQueue   repository.CallQueueRepository
	MessageLogs repository.MessageLogRepository
}

type CallCenterService struct {
	repos      Repositories
	dispatcher messaging.Dispatcher
	metrics    *metrics.Metrics
	config     *config.Config
	log        *logger.Logger
	now        func() time.Time
}

func NewCallCenterService(
	repos Repositories,
	dispatcher messaging.Dispatcher,
	metrics *metrics.Metrics,
	config *config.Config,
	log *logger.Logger,
) *CallCenterService {
	return &CallCenterService{
		repos:      repos,
		dispatcher: dispatcher,
		metrics:    metrics,
		config:     config,
		log:        log,
		now:        time.Now,
	}
}

// PreviewSchedule computes the schedule a plan request would produce without saving it
func (s *CallCenterService) PreviewSchedule(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.SchedulePreviewResponse, error) {
	planRequest, err := s.buildPlanRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	schedule, err := planner.ComputeSchedule(planRequest)
	if err != nil {
		return nil, err
	}

	return &domain.SchedulePreviewResponse{
		DonorID:  request.DonorID,
		Request:  &planRequest,
		Schedule: schedule,
	}, nil
}

// CreatePaymentPlan computes and stores a plan with its installments
func (s *CallCenterService) CreatePaymentPlan(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.CreatePaymentPlanResponse, error) {
	planRequest, err := s.buildPlanRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	schedule, err := planner.ComputeSchedule(planRequest)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plan := &domain.PaymentPlan{
		ID:                  uuid.New(),
		DonorID:             request.DonorID,
		AgentID:             request.AgentID,
		PlanType:            request.PlanType,
		TotalAmount:         planRequest.TotalAmount,
		InstallmentAmount:   schedule.InstallmentAmount,
		FrequencyUnit:       planRequest.FrequencyUnit,
		FrequencyMultiplier: planRequest.FrequencyMultiplier,
		FrequencyLabel:      schedule.FrequencyLabel,
		PaymentCount:        planRequest.PaymentCount,
		StartDate:           planRequest.StartDate,
		LastPaymentDate:     schedule.LastPaymentDate,
		Status:              domain.PlanStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	installments := make([]*domain.PlanInstallment, 0, len(schedule.DueDates))
	for i, dueDate := range schedule.DueDates {
		installments = append(installments, &domain.PlanInstallment{
			ID:                uuid.New(),
			PlanID:            plan.ID,
			InstallmentNumber: i + 1,
			DueAmount:         schedule.InstallmentAmount,
			DueDate:           dueDate,
			Status:            domain.InstallmentStatusPending,
			CreatedAt:         now,
		})
	}

	err = s.repos.Plans.CreateWithInstallments(ctx, plan, installments)
	switch {
	case errors.Is(err, customError.ErrActivePlanExists):
		return nil, customError.WrapActivePlanExists(request.DonorID)
	case errors.Is(err, sql.ErrNoRows):
		return nil, customError.WrapDonorNotFound(request.DonorID)
	case err != nil:
		return nil, customError.WrapDatabaseError(err)
	}

	s.metrics.PlansCreated.WithLabelValues(plan.PlanType).Inc()
	s.log.WithDonor(plan.DonorID).WithFields(logrus.Fields{
		"plan_id":  plan.ID,
		"agent_id": plan.AgentID,
		"payments": plan.PaymentCount,
		"label":    plan.FrequencyLabel,
	}).Info("payment plan created")

	return &domain.CreatePaymentPlanResponse{
		Plan:         plan,
		Installments: installments,
	}, nil
}

// buildPlanRequest turns the wizard input into a scheduler request. A zero
// amount means the donor's outstanding balance.
func (s *CallCenterService) buildPlanRequest(ctx context.Context, request *domain.CreatePaymentPlanRequest) (domain.PaymentPlanRequest, error) {
	donor, err := s.getDonor(ctx, request.DonorID)
	if err != nil {
		return domain.PaymentPlanRequest{}, err
	}

	amount := request.Amount
	if amount.IsZero() {
		amount = donor.OutstandingBalance()
		if amount.IsZero() {
			return domain.PaymentPlanRequest{}, customError.WrapNoOutstandingBalance(donor.ID)
		}
	}

	start, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return domain.PaymentPlanRequest{}, customError.InvalidSchedule("invalid start date %q", request.StartDate)
	}

	switch request.PlanType {
	case domain.PlanTypeTemplate:
		return planner.TemplateRequest(amount, start, request.TemplateMonths), nil
	case domain.PlanTypeCustom:
		return planner.CustomRequest(amount, start, request.Frequency, request.Interval, request.PaymentCount)
	}

	return domain.PaymentPlanRequest{}, customError.InvalidSchedule("unknown plan type %q", request.PlanType)
}

// CancelPaymentPlan cancels an active plan
func (s *CallCenterService) CancelPaymentPlan(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error) {
	plan, err := s.repos.Plans.GetByID(ctx, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPlanNotFound(planID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if plan.Status != domain.PlanStatusActive {
		return nil, customError.WrapPlanNotActive(planID.String(), plan.Status)
	}

	if err := s.repos.Plans.UpdateStatus(ctx, planID, domain.PlanStatusCancelled); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	plan.Status = domain.PlanStatusCancelled
	plan.UpdatedAt = s.now().UTC()

	s.log.WithField("plan_id", planID).Info("payment plan cancelled")
	return plan, nil
}

// PreviewNotification shows how a template would be delivered to a donor
func (s *CallCenterService) PreviewNotification(ctx context.Context, templateKey string, donorID int64) (*domain.NotificationPreview, error) {
	tmpl, err := s.getTemplate(ctx, templateKey)
	if err != nil {
		return nil, err
	}

	donor, err := s.getDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	templateResolution, err := notify.Resolve(domain.NotificationRequest{
		TemplateKey:              tmpl.Key,
		PreferredChannelMode:     tmpl.ChannelMode,
		TemplateBodiesByLanguage: tmpl.Bodies,
	})
	if err != nil {
		return nil, err
	}

	donorResolution, err := notify.ResolveForDonor(domain.NotificationRequest{
		TemplateKey:              tmpl.Key,
		PreferredChannelMode:     tmpl.ChannelMode,
		RecipientLanguage:        donor.PreferredLanguage,
		TemplateBodiesByLanguage: tmpl.Bodies,
	})
	if err != nil {
		return nil, err
	}

	return &domain.NotificationPreview{
		TemplateKey:       tmpl.Key,
		DonorID:           donor.ID,
		Template:          templateResolution,
		Donor:             donorResolution,
		PreviewText:       notify.Render(tmpl.Bodies[donorResolution.ResolvedLanguage], donor.TemplateVariables()),
		WhatsAppAvailable: s.dispatcher.IsWhatsAppAvailable(),
	}, nil
}

// SendNotification resolves, sends and audits one templated message
func (s *CallCenterService) SendNotification(ctx context.Context, request *domain.SendNotificationRequest) (*domain.SendNotificationResponse, error) {
	tmpl, err := s.getTemplate(ctx, request.TemplateKey)
	if err != nil {
		return nil, err
	}

	donor, err := s.getDonor(ctx, request.DonorID)
	if err != nil {
		return nil, err
	}

	mode := request.PreferredChannel
	if mode == "" {
		mode = tmpl.ChannelMode
	}

	preview, err := notify.ResolveForDonor(domain.NotificationRequest{
		TemplateKey:              tmpl.Key,
		PreferredChannelMode:     mode,
		RecipientLanguage:        donor.PreferredLanguage,
		TemplateBodiesByLanguage: tmpl.Bodies,
	})
	if err != nil {
		return nil, err
	}

	source := request.Source
	if source == "" {
		source = DefaultSource
	}

	result := s.dispatcher.SendFromTemplate(ctx, domain.SendRequest{
		TemplateKey:      tmpl.Key,
		RecipientID:      donor.ID,
		Variables:        request.Variables,
		PreferredChannel: request.PreferredChannel,
		Source:           source,
		Queue:            request.Queue,
		ForceImmediate:   request.ForceImmediate,
	})

	entry := newMessageLog(donor.ID, tmpl.Key, source, preview, result, s.now().UTC())
	if err := s.repos.MessageLogs.Create(ctx, entry); err != nil {
		// The message may already be out; losing the audit row must not hide that
		s.log.WithDonor(donor.ID).WithError(err).WithField("message_log_id", entry.ID).Error("failed to write message log")
	}

	s.recordNotificationMetrics(entry)

	return &domain.SendNotificationResponse{
		Preview: preview,
		Result:  result,
		Log:     entry,
	}, nil
}

func newMessageLog(donorID int64, templateKey, source string, preview *domain.NotificationResolution, result *domain.SendResult, now time.Time) *domain.MessageLog {
	status := domain.MessageStatusSent
	switch {
	case !result.Success:
		status = domain.MessageStatusFailed
	case result.Queued:
		status = domain.MessageStatusQueued
	}

	language := result.Language
	if language == "" {
		language = preview.ResolvedLanguage
	}

	var reasons []string
	if preview.UsedFallback {
		reasons = append(reasons, preview.FallbackReason)
	}
	if result.IsFallback {
		reasons = append(reasons, fmt.Sprintf("%s unavailable; sent via %s", preview.ResolvedChannel, result.Channel))
	}

	return &domain.MessageLog{
		ID:                uuid.New(),
		DonorID:           donorID,
		TemplateKey:       templateKey,
		Source:            source,
		PreviewChannel:    string(preview.ResolvedChannel),
		Channel:           result.Channel,
		Language:          string(language),
		LanguageFallback:  preview.UsedFallback,
		TransportFallback: result.IsFallback,
		FallbackReason:    strings.Join(reasons, "; "),
		Status:            status,
		Error:             result.Error,
		ProviderMessageID: result.MessageID,
		CreatedAt:         now,
	}
}

func (s *CallCenterService) recordNotificationMetrics(entry *domain.MessageLog) {
	s.metrics.NotificationsSent.WithLabelValues(entry.Channel, entry.Status).Inc()
	if entry.LanguageFallback {
		s.metrics.Fallbacks.WithLabelValues("language").Inc()
	}
	if entry.TransportFallback {
		s.metrics.Fallbacks.WithLabelValues("transport").Inc()
	}
}

// GetCallQueue lists queue entries, highest priority first
func (s *CallCenterService) GetCallQueue(ctx context.Context, filter domain.QueueFilter) ([]*domain.CallQueueEntry, error) {
	switch filter.Status {
	case "", domain.QueueStatusPending, domain.QueueStatusCallbackScheduled, domain.QueueStatusCompleted, domain.QueueStatusClosed:
	default:
		return nil, customError.WrapValidation(fmt.Errorf("unknown queue status %q", filter.Status))
	}

	if filter.Limit <= 0 {
		filter.Limit = s.config.CallQueue.DefaultLimit
	}
	if filter.Limit > maxQueueLimit {
		filter.Limit = maxQueueLimit
	}

	entries, err := s.repos.CallQueue.List(ctx, filter, s.now().UTC())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if entries == nil {
		entries = []*domain.CallQueueEntry{}
	}

	return entries, nil
}

// RecordCall logs a call and moves the queue entry to its next state
func (s *CallCenterService) RecordCall(ctx context.Context, request *domain.RecordCallRequest) (*domain.RecordCallResponse, error) {
	outcome, err := domain.ParseOutcome(request.Outcome)
	if err != nil {
		return nil, customError.WrapInvalidCallOutcome(err.Error())
	}
	stage, err := domain.ParseConversationStage(request.Stage)
	if err != nil {
		return nil, customError.WrapInvalidCallOutcome(err.Error())
	}
	disposition, err := domain.ParseDisposition(request.Disposition)
	if err != nil {
		return nil, customError.WrapInvalidCallOutcome(err.Error())
	}

	entry, err := s.repos.CallQueue.GetByID(ctx, request.EntryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapQueueEntryNotFound(request.EntryID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if entry.IsClosed() {
		return nil, customError.WrapQueueEntryClosed(entry.ID)
	}

	now := s.now().UTC()
	policy := domain.QueuePolicy{
		MaxAttempts:   s.config.CallQueue.MaxAttempts,
		RetryDelay:    s.config.CallQueue.RetryDelay,
		FollowUpDelay: s.config.CallQueue.FollowUpDelay,
	}
	result := domain.CallResult{
		Outcome:     outcome,
		Stage:       stage,
		Disposition: disposition,
		CallbackAt:  request.CallbackAt,
	}
	if err := entry.ApplyOutcome(result, policy, now); err != nil {
		return nil, customError.WrapInvalidCallOutcome(err.Error())
	}

	if entry.AssignedAgentID == nil {
		agentID := request.AgentID
		entry.AssignedAgentID = &agentID
	}
	entry.UpdatedAt = now

	callLog := &domain.CallLog{
		ID:                uuid.New(),
		QueueEntryID:      entry.ID,
		DonorID:           entry.DonorID,
		AgentID:           request.AgentID,
		Outcome:           outcome,
		ConversationStage: entry.ConversationStage,
		Disposition:       disposition,
		Notes:             request.Notes,
		DurationSeconds:   request.DurationSeconds,
		CallbackAt:        request.CallbackAt,
		CreatedAt:         now,
	}

	if err := s.repos.CallQueue.RecordCall(ctx, entry, callLog); err != nil {
		if errors.Is(err, customError.ErrQueueEntryConflict) {
			return nil, customError.WrapQueueEntryConflict(entry.ID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.metrics.CallsRecorded.WithLabelValues(string(outcome)).Inc()
	s.log.WithAgent(request.AgentID).WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"donor_id": entry.DonorID,
		"outcome":  outcome,
		"status":   entry.Status,
	}).Info("call recorded")

	return &domain.RecordCallResponse{
		Entry: entry,
		Log:   callLog,
	}, nil
}

// GetAgentDashboard summarizes an agent's day (YYYY-MM-DD, today when
// empty) in the configured timezone
func (s *CallCenterService) GetAgentDashboard(ctx context.Context, agentID int64, day string) (*domain.AgentDashboard, error) {
	loc := s.config.Location()

	from := utils.DateOnly(s.now().In(loc))
	if day != "" {
		parsed, err := time.ParseInLocation(utils.DateLayout, day, loc)
		if err != nil {
			return nil, customError.WrapValidation(fmt.Errorf("date must be YYYY-MM-DD: %w", err))
		}
		from = parsed
	}
	to := utils.AddDays(from, 1)

	counts, err := s.repos.CallQueue.OutcomeCounts(ctx, agentID, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	dashboard := &domain.AgentDashboard{
		AgentID:        agentID,
		Date:           utils.FormatDate(from),
		CallsByOutcome: make(map[string]int, len(counts)),
	}
	for _, c := range counts {
		dashboard.CallsByOutcome[c.Outcome] = c.Count
		dashboard.TotalCalls += c.Count
	}

	if dashboard.PendingQueue, err = s.repos.CallQueue.CountOpen(ctx, agentID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if dashboard.CallbacksDue, err = s.repos.CallQueue.CountCallbacksDue(ctx, agentID, from, to); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if dashboard.PlansCreated, err = s.repos.Plans.CountCreatedByAgent(ctx, agentID, from, to); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return dashboard, nil
}

func (s *CallCenterService) getDonor(ctx context.Context, donorID int64) (*domain.Donor, error) {
	donor, err := s.repos.Donors.GetByID(ctx, donorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDonorNotFound(donorID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return donor, nil
}

func (s *CallCenterService) getTemplate(ctx context.Context, key string) (*domain.MessageTemplate, error) {
	tmpl, err := s.repos.Templates.GetByKey(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapTemplateNotFound(key)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return tmpl, nil
}
