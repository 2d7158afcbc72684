package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/pledge-callcenter/internal/config"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/segyhp/pledge-callcenter/internal/mocks"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
	"github.com/segyhp/pledge-callcenter/pkg/logger"
	"github.com/segyhp/pledge-callcenter/pkg/metrics"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type serviceMocks struct {
	donors      *mocks.MockDonorRepository
	plans       *mocks.MockPlanRepository
	templates   *mocks.MockTemplateRepository
	queue       *mocks.MockCallQueueRepository
	messageLogs *mocks.MockMessageLogRepository
	dispatcher  *mocks.MockDispatcher
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	m.donors.AssertExpectations(t)
	m.plans.AssertExpectations(t)
	m.templates.AssertExpectations(t)
	m.queue.AssertExpectations(t)
	m.messageLogs.AssertExpectations(t)
	m.dispatcher.AssertExpectations(t)
}

func newTestService() (*CallCenterService, *serviceMocks) {
	m := &serviceMocks{
		donors:      &mocks.MockDonorRepository{},
		plans:       &mocks.MockPlanRepository{},
		templates:   &mocks.MockTemplateRepository{},
		queue:       &mocks.MockCallQueueRepository{},
		messageLogs: &mocks.MockMessageLogRepository{},
		dispatcher:  &mocks.MockDispatcher{},
	}

	cfg := &config.Config{
		CallQueue: config.CallQueueConfig{
			MaxAttempts:   3,
			RetryDelay:    2 * time.Hour,
			FollowUpDelay: 24 * time.Hour,
			DefaultLimit:  50,
		},
		Reminders: config.ReminderConfig{Timezone: "UTC"},
	}

	svc := NewCallCenterService(
		Repositories{
			Donors:      m.donors,
			Plans:       m.plans,
			Templates:   m.templates,
			CallQueue:   m.queue,
			MessageLogs: m.messageLogs,
		},
		m.dispatcher,
		metrics.New(prometheus.NewRegistry()),
		cfg,
		logger.Discard(),
	)
	svc.now = func() time.Time { return fixedNow }

	return svc, m
}

func testDonor(lang domain.Language) *domain.Donor {
	return &domain.Donor{
		ID:                42,
		Name:              "Abebe",
		Phone:             "+251911000000",
		PreferredLanguage: lang,
		PledgeAmount:      decimal.NewFromInt(500),
		TotalPaid:         decimal.NewFromInt(200),
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreatePaymentPlan_TemplateDefaultsToOutstandingBalance(t *testing.T) {
	svc, m := newTestService()

	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)
	m.plans.On("CreateWithInstallments", mock.Anything,
		mock.MatchedBy(func(p *domain.PaymentPlan) bool {
			return p.DonorID == 42 && p.Status == domain.PlanStatusActive && p.TotalAmount.Equal(decimal.NewFromInt(300))
		}),
		mock.MatchedBy(func(items []*domain.PlanInstallment) bool {
			return len(items) == 3
		}),
	).Return(nil)

	resp, err := svc.CreatePaymentPlan(context.Background(), &domain.CreatePaymentPlanRequest{
		DonorID:        42,
		AgentID:        7,
		PlanType:       domain.PlanTypeTemplate,
		StartDate:      "2024-01-31",
		TemplateMonths: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, "Monthly", resp.Plan.FrequencyLabel)
	assert.True(t, resp.Plan.InstallmentAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, date("2024-03-31"), resp.Plan.LastPaymentDate)

	require.Len(t, resp.Installments, 3)
	assert.Equal(t, date("2024-01-31"), resp.Installments[0].DueDate)
	assert.Equal(t, date("2024-02-29"), resp.Installments[1].DueDate)
	assert.Equal(t, date("2024-03-31"), resp.Installments[2].DueDate)
	for i, inst := range resp.Installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, resp.Plan.ID, inst.PlanID)
		assert.Equal(t, domain.InstallmentStatusPending, inst.Status)
	}

	m.assertExpectations(t)
}

func TestCreatePaymentPlan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		request  *domain.CreatePaymentPlanRequest
		setup    func(m *serviceMocks)
		wantCode string
		wantErr  error
	}{
		{
			name:    "donor not found",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeTemplate, StartDate: "2024-01-01", TemplateMonths: 3},
			setup: func(m *serviceMocks) {
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)
			},
			wantCode: customError.ErrCodeDonorNotFound,
			wantErr:  customError.ErrDonorNotFound,
		},
		{
			name:    "active plan exists",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeTemplate, StartDate: "2024-01-01", TemplateMonths: 3},
			setup: func(m *serviceMocks) {
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)
				m.plans.On("CreateWithInstallments", mock.Anything, mock.Anything, mock.Anything).Return(customError.ErrActivePlanExists)
			},
			wantCode: customError.ErrCodeActivePlanExists,
			wantErr:  customError.ErrActivePlanExists,
		},
		{
			name:    "nothing left to pay",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeTemplate, StartDate: "2024-01-01", TemplateMonths: 3},
			setup: func(m *serviceMocks) {
				donor := testDonor(domain.LanguageEnglish)
				donor.TotalPaid = donor.PledgeAmount
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(donor, nil)
			},
			wantCode: customError.ErrCodeNoOutstandingBalance,
			wantErr:  customError.ErrNoOutstandingBalance,
		},
		{
			name:    "zero payment count",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeCustom, StartDate: "2024-01-01", Frequency: "weekly", PaymentCount: 0},
			setup: func(m *serviceMocks) {
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)
			},
			wantCode: customError.ErrCodeInvalidSchedule,
			wantErr:  customError.ErrInvalidSchedule,
		},
		{
			name:    "unknown frequency",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeCustom, StartDate: "2024-01-01", Frequency: "fortnightly-ish", PaymentCount: 4},
			setup: func(m *serviceMocks) {
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)
			},
			wantCode: customError.ErrCodeInvalidSchedule,
			wantErr:  customError.ErrInvalidSchedule,
		},
		{
			name:    "database failure",
			request: &domain.CreatePaymentPlanRequest{DonorID: 42, AgentID: 7, PlanType: domain.PlanTypeTemplate, StartDate: "2024-01-01", TemplateMonths: 3},
			setup: func(m *serviceMocks) {
				m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)
				m.plans.On("CreateWithInstallments", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))
			},
			wantCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			tt.setup(m)

			resp, err := svc.CreatePaymentPlan(context.Background(), tt.request)

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, customError.CodeOf(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPreviewSchedule_DoesNotPersist(t *testing.T) {
	svc, m := newTestService()
	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageEnglish), nil)

	resp, err := svc.PreviewSchedule(context.Background(), &domain.CreatePaymentPlanRequest{
		DonorID:      42,
		AgentID:      7,
		PlanType:     domain.PlanTypeCustom,
		Amount:       decimal.NewFromInt(100),
		StartDate:    "2024-03-01",
		Frequency:    "biweekly",
		PaymentCount: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.DonorID)
	assert.Equal(t, "Every 2 weeks", resp.Schedule.FrequencyLabel)
	assert.True(t, resp.Schedule.InstallmentAmount.Equal(decimal.RequireFromString("33.33")))
	assert.Equal(t, []time.Time{date("2024-03-01"), date("2024-03-15"), date("2024-03-29")}, resp.Schedule.DueDates)
	m.plans.AssertNotCalled(t, "CreateWithInstallments", mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestCancelPaymentPlan(t *testing.T) {
	planID := uuid.New()

	t.Run("active plan", func(t *testing.T) {
		svc, m := newTestService()
		m.plans.On("GetByID", mock.Anything, planID).Return(&domain.PaymentPlan{ID: planID, Status: domain.PlanStatusActive}, nil)
		m.plans.On("UpdateStatus", mock.Anything, planID, domain.PlanStatusCancelled).Return(nil)

		plan, err := svc.CancelPaymentPlan(context.Background(), planID)

		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusCancelled, plan.Status)
		m.assertExpectations(t)
	})

	t.Run("already cancelled", func(t *testing.T) {
		svc, m := newTestService()
		m.plans.On("GetByID", mock.Anything, planID).Return(&domain.PaymentPlan{ID: planID, Status: domain.PlanStatusCancelled}, nil)

		_, err := svc.CancelPaymentPlan(context.Background(), planID)

		assert.ErrorIs(t, err, customError.ErrPlanNotActive)
		m.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc, m := newTestService()
		m.plans.On("GetByID", mock.Anything, planID).Return(nil, sql.ErrNoRows)

		_, err := svc.CancelPaymentPlan(context.Background(), planID)

		assert.Equal(t, customError.ErrCodePlanNotFound, customError.CodeOf(err))
		m.assertExpectations(t)
	})
}

func autoTemplate() *domain.MessageTemplate {
	return &domain.MessageTemplate{
		Key:         "reminder",
		ChannelMode: domain.ChannelModeAuto,
		Bodies: map[domain.Language]string{
			domain.LanguageEnglish: "Dear {name}, your balance is {balance}",
			domain.LanguageAmharic: "ውድ {name}",
		},
		Active: true,
	}
}

func TestPreviewNotification(t *testing.T) {
	svc, m := newTestService()
	m.templates.On("GetByKey", mock.Anything, "reminder").Return(autoTemplate(), nil)
	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageTigrinya), nil)
	m.dispatcher.On("IsWhatsAppAvailable").Return(true)

	preview, err := svc.PreviewNotification(context.Background(), "reminder", 42)

	require.NoError(t, err)
	assert.Equal(t, domain.ChannelWhatsApp, preview.Template.ResolvedChannel)
	assert.Equal(t, domain.LanguageAmharic, preview.Template.ResolvedLanguage)
	assert.False(t, preview.Template.UsedFallback)

	assert.Equal(t, domain.LanguageEnglish, preview.Donor.ResolvedLanguage)
	assert.True(t, preview.Donor.UsedFallback)
	assert.Equal(t, "no Tigrinya translation; used English", preview.Donor.FallbackReason)

	assert.Equal(t, "Dear Abebe, your balance is 300.00", preview.PreviewText)
	assert.True(t, preview.WhatsAppAvailable)
	m.assertExpectations(t)
}

func TestPreviewNotification_TemplateNotFound(t *testing.T) {
	svc, m := newTestService()
	m.templates.On("GetByKey", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := svc.PreviewNotification(context.Background(), "missing", 42)

	assert.ErrorIs(t, err, customError.ErrTemplateNotFound)
	m.assertExpectations(t)
}

func TestSendNotification_AuditsTransportFallback(t *testing.T) {
	svc, m := newTestService()
	m.templates.On("GetByKey", mock.Anything, "reminder").Return(autoTemplate(), nil)
	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageAmharic), nil)
	m.dispatcher.On("SendFromTemplate", mock.Anything, domain.SendRequest{
		TemplateKey: "reminder",
		RecipientID: 42,
		Source:      DefaultSource,
	}).Return(&domain.SendResult{
		Success:    true,
		Channel:    "sms",
		IsFallback: true,
		Language:   domain.LanguageEnglish,
		MessageID:  "sms-9",
	})
	m.messageLogs.On("Create", mock.Anything, mock.AnythingOfType("*domain.MessageLog")).Return(nil)

	resp, err := svc.SendNotification(context.Background(), &domain.SendNotificationRequest{
		TemplateKey: "reminder",
		DonorID:     42,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ChannelWhatsApp, resp.Preview.ResolvedChannel)
	assert.Equal(t, domain.LanguageAmharic, resp.Preview.ResolvedLanguage)

	log := resp.Log
	assert.Equal(t, domain.MessageStatusSent, log.Status)
	assert.Equal(t, "whatsapp", log.PreviewChannel)
	assert.Equal(t, "sms", log.Channel)
	assert.Equal(t, "en", log.Language)
	assert.False(t, log.LanguageFallback)
	assert.True(t, log.TransportFallback)
	assert.Equal(t, "whatsapp unavailable; sent via sms", log.FallbackReason)
	assert.Equal(t, "sms-9", log.ProviderMessageID)
	m.assertExpectations(t)
}

func TestSendNotification_MergesLanguageFallbackAndQueues(t *testing.T) {
	svc, m := newTestService()
	m.templates.On("GetByKey", mock.Anything, "reminder").Return(autoTemplate(), nil)
	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageTigrinya), nil)
	m.dispatcher.On("SendFromTemplate", mock.Anything, mock.MatchedBy(func(req domain.SendRequest) bool {
		return req.Queue && req.Source == "campaign"
	})).Return(&domain.SendResult{Success: true, Queued: true, Channel: "whatsapp", Language: domain.LanguageEnglish})
	m.messageLogs.On("Create", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	resp, err := svc.SendNotification(context.Background(), &domain.SendNotificationRequest{
		TemplateKey: "reminder",
		DonorID:     42,
		Queue:       true,
		Source:      "campaign",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusQueued, resp.Log.Status)
	assert.True(t, resp.Log.LanguageFallback)
	assert.Equal(t, "no Tigrinya translation; used English", resp.Log.FallbackReason)
	m.assertExpectations(t)
}

func TestSendNotification_NoEnglishBodyIsRejected(t *testing.T) {
	svc, m := newTestService()
	tmpl := autoTemplate()
	delete(tmpl.Bodies, domain.LanguageEnglish)
	m.templates.On("GetByKey", mock.Anything, "reminder").Return(tmpl, nil)
	m.donors.On("GetByID", mock.Anything, int64(42)).Return(testDonor(domain.LanguageAmharic), nil)

	_, err := svc.SendNotification(context.Background(), &domain.SendNotificationRequest{TemplateKey: "reminder", DonorID: 42})

	assert.ErrorIs(t, err, customError.ErrNoTemplateBody)
	m.dispatcher.AssertNotCalled(t, "SendFromTemplate", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestGetCallQueue(t *testing.T) {
	t.Run("applies default limit", func(t *testing.T) {
		svc, m := newTestService()
		m.queue.On("List", mock.Anything, domain.QueueFilter{AgentID: 7, Limit: 50}, fixedNow).Return(nil, nil)

		entries, err := svc.GetCallQueue(context.Background(), domain.QueueFilter{AgentID: 7})

		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		m.assertExpectations(t)
	})

	t.Run("caps limit", func(t *testing.T) {
		svc, m := newTestService()
		m.queue.On("List", mock.Anything, domain.QueueFilter{Limit: maxQueueLimit}, fixedNow).
			Return([]*domain.CallQueueEntry{{ID: 1}}, nil)

		entries, err := svc.GetCallQueue(context.Background(), domain.QueueFilter{Limit: 5000})

		require.NoError(t, err)
		assert.Len(t, entries, 1)
		m.assertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.GetCallQueue(context.Background(), domain.QueueFilter{Status: "sleeping"})

		assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))
	})
}

func openEntry() *domain.CallQueueEntry {
	return &domain.CallQueueEntry{
		ID:                9,
		DonorID:           42,
		Status:            domain.QueueStatusPending,
		ConversationStage: domain.StageNotStarted,
		NextAttemptAt:     fixedNow.Add(-time.Hour),
	}
}

func TestRecordCall_NoAnswerSchedulesRetry(t *testing.T) {
	svc, m := newTestService()
	m.queue.On("GetByID", mock.Anything, int64(9)).Return(openEntry(), nil)
	m.queue.On("RecordCall", mock.Anything,
		mock.MatchedBy(func(e *domain.CallQueueEntry) bool {
			return e.Attempts == 1 && e.Status == domain.QueueStatusPending && e.NextAttemptAt.Equal(fixedNow.Add(2*time.Hour))
		}),
		mock.MatchedBy(func(l *domain.CallLog) bool {
			return l.AgentID == 7 && l.Outcome == domain.OutcomeNoAnswer && l.QueueEntryID == 9
		}),
	).Return(nil)

	resp, err := svc.RecordCall(context.Background(), &domain.RecordCallRequest{
		EntryID: 9,
		AgentID: 7,
		Outcome: "no_answer",
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Entry.AssignedAgentID)
	assert.Equal(t, int64(7), *resp.Entry.AssignedAgentID)
	m.assertExpectations(t)
}

func TestRecordCall_ConnectedCompletes(t *testing.T) {
	svc, m := newTestService()
	m.queue.On("GetByID", mock.Anything, int64(9)).Return(openEntry(), nil)
	m.queue.On("RecordCall", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.RecordCall(context.Background(), &domain.RecordCallRequest{
		EntryID:     9,
		AgentID:     7,
		Outcome:     "connected",
		Stage:       "plan_agreed",
		Disposition: "payment_plan_created",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusCompleted, resp.Entry.Status)
	assert.Equal(t, domain.StageCompleted, resp.Entry.ConversationStage)
	assert.Equal(t, domain.DispositionPaymentPlanCreated, resp.Log.Disposition)
	m.assertExpectations(t)
}

func TestRecordCall_ConcurrentUpdateConflicts(t *testing.T) {
	svc, m := newTestService()
	m.queue.On("GetByID", mock.Anything, int64(9)).Return(openEntry(), nil)
	m.queue.On("RecordCall", mock.Anything, mock.Anything, mock.Anything).Return(customError.ErrQueueEntryConflict)

	resp, err := svc.RecordCall(context.Background(), &domain.RecordCallRequest{
		EntryID: 9,
		AgentID: 7,
		Outcome: "busy",
	})

	assert.Nil(t, resp)
	assert.Equal(t, customError.ErrCodeQueueEntryConflict, customError.CodeOf(err))
	assert.ErrorIs(t, err, customError.ErrQueueEntryConflict)
	m.assertExpectations(t)
}

func TestRecordCall_Rejections(t *testing.T) {
	closed := openEntry()
	closed.Status = domain.QueueStatusClosed

	tests := []struct {
		name     string
		request  *domain.RecordCallRequest
		setup    func(m *serviceMocks)
		wantCode string
	}{
		{
			name:     "unknown outcome",
			request:  &domain.RecordCallRequest{EntryID: 9, AgentID: 7, Outcome: "hung_up"},
			setup:    func(m *serviceMocks) {},
			wantCode: customError.ErrCodeInvalidCallOutcome,
		},
		{
			name:     "unknown stage",
			request:  &domain.RecordCallRequest{EntryID: 9, AgentID: 7, Outcome: "connected", Stage: "small_talk"},
			setup:    func(m *serviceMocks) {},
			wantCode: customError.ErrCodeInvalidCallOutcome,
		},
		{
			name:    "disposition without connection",
			request: &domain.RecordCallRequest{EntryID: 9, AgentID: 7, Outcome: "busy", Disposition: "refused"},
			setup: func(m *serviceMocks) {
				m.queue.On("GetByID", mock.Anything, int64(9)).Return(openEntry(), nil)
			},
			wantCode: customError.ErrCodeInvalidCallOutcome,
		},
		{
			name:    "entry not found",
			request: &domain.RecordCallRequest{EntryID: 9, AgentID: 7, Outcome: "busy"},
			setup: func(m *serviceMocks) {
				m.queue.On("GetByID", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)
			},
			wantCode: customError.ErrCodeQueueEntryNotFound,
		},
		{
			name:    "entry closed",
			request: &domain.RecordCallRequest{EntryID: 9, AgentID: 7, Outcome: "busy"},
			setup: func(m *serviceMocks) {
				m.queue.On("GetByID", mock.Anything, int64(9)).Return(closed, nil)
			},
			wantCode: customError.ErrCodeQueueEntryClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			tt.setup(m)

			_, err := svc.RecordCall(context.Background(), tt.request)

			assert.Equal(t, tt.wantCode, customError.CodeOf(err))
			m.queue.AssertNotCalled(t, "RecordCall", mock.Anything, mock.Anything, mock.Anything)
			m.assertExpectations(t)
		})
	}
}

func TestGetAgentDashboard(t *testing.T) {
	svc, m := newTestService()
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	m.queue.On("OutcomeCounts", mock.Anything, int64(7), from, to).Return([]domain.OutcomeCount{
		{Outcome: "busy", Count: 2},
		{Outcome: "connected", Count: 3},
	}, nil)
	m.queue.On("CountOpen", mock.Anything, int64(7)).Return(11, nil)
	m.queue.On("CountCallbacksDue", mock.Anything, int64(7), from, to).Return(2, nil)
	m.plans.On("CountCreatedByAgent", mock.Anything, int64(7), from, to).Return(1, nil)

	dashboard, err := svc.GetAgentDashboard(context.Background(), 7, "")

	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", dashboard.Date)
	assert.Equal(t, 5, dashboard.TotalCalls)
	assert.Equal(t, map[string]int{"busy": 2, "connected": 3}, dashboard.CallsByOutcome)
	assert.Equal(t, 11, dashboard.PendingQueue)
	assert.Equal(t, 2, dashboard.CallbacksDue)
	assert.Equal(t, 1, dashboard.PlansCreated)
	m.assertExpectations(t)
}

func TestGetAgentDashboard_ExplicitDate(t *testing.T) {
	svc, m := newTestService()
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	m.queue.On("OutcomeCounts", mock.Anything, int64(7), from, to).Return([]domain.OutcomeCount{}, nil)
	m.queue.On("CountOpen", mock.Anything, int64(7)).Return(0, nil)
	m.queue.On("CountCallbacksDue", mock.Anything, int64(7), from, to).Return(0, nil)
	m.plans.On("CountCreatedByAgent", mock.Anything, int64(7), from, to).Return(0, nil)

	dashboard, err := svc.GetAgentDashboard(context.Background(), 7, "2024-04-01")

	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", dashboard.Date)
	assert.Equal(t, 0, dashboard.TotalCalls)
	m.assertExpectations(t)
}

func TestGetAgentDashboard_BadDate(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetAgentDashboard(context.Background(), 7, "01/04/2024")

	assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))
}
