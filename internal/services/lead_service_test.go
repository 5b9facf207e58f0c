package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"sitecms/internal/common"
	"sitecms/internal/models"
)

var leadReceivedAt = time.Date(2024, 7, 1, 9, 30, 0, 0, time.FixedZone("MSK", 3*60*60))

type LeadServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	leadRepo     *MockLeadRepository
	settingsRepo *MockSettingsRepository
	notifier     *MockNotifier
	cache        *MockCacheService
	service      LeadService
}

func (suite *LeadServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.leadRepo = new(MockLeadRepository)
	suite.settingsRepo = new(MockSettingsRepository)
	suite.notifier = new(MockNotifier)
	suite.cache = new(MockCacheService)
	suite.service = NewLeadService(suite.leadRepo, suite.settingsRepo, suite.notifier, suite.cache, LeadOptions{
		ChatIDSetting: "telegram_chat_id",
		NotifyTimeout: time.Second,
		MaxAttempts:   3,
		SubmitLimit:   10,
		SubmitWindow:  time.Minute,
	})
	suite.service.(*leadService).now = func() time.Time { return leadReceivedAt }
}

func (suite *LeadServiceTestSuite) TearDownTest() {
	suite.service.Wait()
	suite.leadRepo.AssertExpectations(suite.T())
	suite.settingsRepo.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestLeadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LeadServiceTestSuite))
}

func (suite *LeadServiceTestSuite) expectStore(id int64) {
	suite.cache.On("IsRateLimited", suite.ctx, "lead:a.example:10.0.0.1", 10, time.Minute).Return(false, nil).Once()
	suite.leadRepo.On("Create", suite.ctx, mock.MatchedBy(func(l *models.Lead) bool {
		return l.TenantID == "a.example" &&
			l.NotifyStatus == models.NotifyPending &&
			!l.CreatedAt.IsZero() &&
			l.CreatedAt.Equal(leadReceivedAt) &&
			l.CreatedAt.Location() == time.UTC
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Lead).ID = id
	}).Return(nil).Once()
}

func (suite *LeadServiceTestSuite) TestSubmit_NoChatConfigured() {
	suite.expectStore(1)
	suite.settingsRepo.On("Get", mock.Anything, "a.example", "telegram_chat_id").Return("", false, nil).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(1), models.NotifySkipped).Return(nil).Once()

	lead, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan", "phone": "123"}, "10.0.0.1")
	suite.service.Wait()

	suite.Require().NoError(err)
	suite.Equal(int64(1), lead.ID)
	suite.notifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LeadServiceTestSuite) TestSubmit_SendsNotification() {
	suite.expectStore(2)
	suite.settingsRepo.On("Get", mock.Anything, "a.example", "telegram_chat_id").Return("42", true, nil).Once()
	suite.notifier.On("Send", mock.Anything, "42", mock.MatchedBy(func(text string) bool {
		return containsAll(text, "Ivan", "123")
	})).Return(nil).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(2), models.NotifySent).Return(nil).Once()

	_, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan", "phone": "123"}, "10.0.0.1")
	suite.service.Wait()

	suite.NoError(err)
}

func (suite *LeadServiceTestSuite) TestSubmit_NotificationFailureIsSwallowed() {
	suite.expectStore(3)
	suite.settingsRepo.On("Get", mock.Anything, "a.example", "telegram_chat_id").Return("42", true, nil).Once()
	suite.notifier.On("Send", mock.Anything, "42", mock.Anything).Return(errors.New("telegram unreachable")).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(3), models.NotifyFailed).Return(nil).Once()

	lead, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan"}, "10.0.0.1")
	suite.service.Wait()

	suite.NoError(err)
	suite.NotNil(lead)
}

func (suite *LeadServiceTestSuite) TestSubmit_DoesNotWaitForNotification() {
	suite.expectStore(4)
	release := make(chan struct{})
	suite.settingsRepo.On("Get", mock.Anything, "a.example", "telegram_chat_id").Return("42", true, nil).Once()
	suite.notifier.On("Send", mock.Anything, "42", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(4), models.NotifySent).Return(nil).Once()

	done := make(chan struct{})
	go func() {
		_, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan"}, "10.0.0.1")
		suite.NoError(err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.Fail("Submit blocked on the notification")
	}
	close(release)
}

func (suite *LeadServiceTestSuite) TestSubmit_CancelledRequestStillNotifies() {
	ctx, cancel := context.WithCancel(suite.ctx)
	suite.cache.On("IsRateLimited", ctx, mock.Anything, 10, time.Minute).Return(false, nil).Once()
	suite.leadRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	suite.settingsRepo.On("Get", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), "a.example", "telegram_chat_id").Return("42", true, nil).Once()
	suite.notifier.On("Send", mock.Anything, "42", mock.Anything).Return(nil).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(0), models.NotifySent).Return(nil).Once()

	_, err := suite.service.Submit(ctx, "a.example", map[string]any{"name": "Ivan"}, "10.0.0.1")
	cancel()
	suite.service.Wait()

	suite.NoError(err)
}

func (suite *LeadServiceTestSuite) TestSubmit_StorageFailure() {
	suite.cache.On("IsRateLimited", suite.ctx, mock.Anything, 10, time.Minute).Return(false, nil).Once()
	suite.leadRepo.On("Create", suite.ctx, mock.Anything).Return(errors.New("db down")).Once()

	_, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan"}, "10.0.0.1")
	suite.service.Wait()

	suite.EqualError(err, "db down")
	suite.settingsRepo.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LeadServiceTestSuite) TestSubmit_RateLimited() {
	suite.cache.On("IsRateLimited", suite.ctx, "lead:a.example:10.0.0.1", 10, time.Minute).Return(true, nil).Once()

	_, err := suite.service.Submit(suite.ctx, "a.example", map[string]any{"name": "Ivan"}, "10.0.0.1")

	suite.ErrorIs(err, common.ErrRateLimited)
	suite.leadRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *LeadServiceTestSuite) TestSubmit_RequiresObject() {
	_, err := suite.service.Submit(suite.ctx, "a.example", nil, "10.0.0.1")
	suite.ErrorIs(err, common.ErrBadRequest)
}

func (suite *LeadServiceTestSuite) TestList_ClampsPagination() {
	suite.leadRepo.On("List", suite.ctx, "a.example", 500, 0).Return([]*models.Lead{}, nil).Once()

	leads, err := suite.service.List(suite.ctx, "a.example", 10000, -5)

	suite.NoError(err)
	suite.Empty(leads)
}

func (suite *LeadServiceTestSuite) TestGet() {
	suite.leadRepo.On("GetByID", suite.ctx, int64(7)).Return(&models.Lead{ID: 7, TenantID: "a.example"}, nil).Once()

	lead, err := suite.service.Get(suite.ctx, "a.example", 7)

	suite.Require().NoError(err)
	suite.Equal(int64(7), lead.ID)
}

func (suite *LeadServiceTestSuite) TestGet_OtherSite() {
	suite.leadRepo.On("GetByID", suite.ctx, int64(7)).Return(&models.Lead{ID: 7, TenantID: "b.example"}, nil).Once()

	_, err := suite.service.Get(suite.ctx, "a.example", 7)

	suite.ErrorIs(err, common.ErrNotFound)
}

func (suite *LeadServiceTestSuite) TestRetryFailed() {
	suite.leadRepo.On("ListFailed", suite.ctx, 3, 100).Return([]*models.Lead{
		{ID: 7, TenantID: "a.example", Data: models.JSONObject{"name": "Ivan"}},
		{ID: 8, TenantID: "b.example", Data: models.JSONObject{"name": "Olga"}},
	}, nil).Once()
	suite.settingsRepo.On("Get", mock.Anything, "a.example", "telegram_chat_id").Return("42", true, nil).Once()
	suite.settingsRepo.On("Get", mock.Anything, "b.example", "telegram_chat_id").Return("43", true, nil).Once()
	suite.notifier.On("Send", mock.Anything, "42", mock.Anything).Return(nil).Once()
	suite.notifier.On("Send", mock.Anything, "43", mock.Anything).Return(errors.New("still down")).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(7), models.NotifySent).Return(nil).Once()
	suite.leadRepo.On("RecordNotification", mock.Anything, int64(8), models.NotifyFailed).Return(nil).Once()

	delivered, err := suite.service.RetryFailed(suite.ctx)

	suite.NoError(err)
	suite.Equal(1, delivered)
}

func (suite *LeadServiceTestSuite) TestRetryFailed_ListError() {
	suite.leadRepo.On("ListFailed", suite.ctx, 3, 100).Return(nil, errors.New("db down")).Once()

	_, err := suite.service.RetryFailed(suite.ctx)

	suite.Error(err)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
