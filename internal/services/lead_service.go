package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sitecms/internal/caching"
	"sitecms/internal/common"
	"sitecms/internal/logging"
	"sitecms/internal/metrics"
	"sitecms/internal/models"
	"sitecms/internal/notify"
	"sitecms/internal/repositories"
)

const (
	retryBatchSize = 100
	recordTimeout  = 5 * time.Second
)

type LeadService interface {
	// Submit stores the lead and returns once it is persisted. The notification
	// is sent in the background and its outcome never reaches the caller.
	Submit(ctx context.Context, tenantID string, payload map[string]any, clientIP string) (*models.Lead, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*models.Lead, error)
	// Get returns one lead of the site; leads of other sites are not found.
	Get(ctx context.Context, tenantID string, id int64) (*models.Lead, error)
	// RetryFailed re-sends failed notifications and reports how many were delivered.
	RetryFailed(ctx context.Context) (int, error)
	// Wait blocks until in-flight notifications finish.
	Wait()
}

type LeadOptions struct {
	ChatIDSetting string
	NotifyTimeout time.Duration
	MaxAttempts   int
	SubmitLimit   int
	SubmitWindow  time.Duration
}

type leadService struct {
	leadRepo     repositories.LeadRepository
	settingsRepo repositories.SettingsRepository
	notifier     notify.Notifier
	cacheSvc     caching.CacheService
	opts         LeadOptions
	now          func() time.Time
	wg           sync.WaitGroup
}

func NewLeadService(leadRepo repositories.LeadRepository, settingsRepo repositories.SettingsRepository, notifier notify.Notifier, cacheSvc caching.CacheService, opts LeadOptions) LeadService {
	if opts.ChatIDSetting == "" {
		opts.ChatIDSetting = "telegram_chat_id"
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &leadService{
		leadRepo:     leadRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		cacheSvc:     cacheSvc,
		opts:         opts,
		now:          time.Now,
	}
}

func (s *leadService) Submit(ctx context.Context, tenantID string, payload map[string]any, clientIP string) (*models.Lead, error) {
	if payload == nil {
		return nil, common.NewValidationError("payload", "Lead payload must be a JSON object")
	}

	if s.cacheSvc != nil && s.opts.SubmitLimit > 0 {
		key := fmt.Sprintf("lead:%s:%s", tenantID, clientIP)
		limited, err := s.cacheSvc.IsRateLimited(ctx, key, s.opts.SubmitLimit, s.opts.SubmitWindow)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("lead rate limiter unavailable")
		} else if limited {
			return nil, common.ErrRateLimited
		}
	}

	lead := &models.Lead{
		TenantID:     tenantID,
		Data:         models.JSONObject(payload),
		CreatedAt:    s.now().UTC(),
		NotifyStatus: models.NotifyPending,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	metrics.LeadsSubmittedTotal.Inc()
	logging.Ctx(ctx).Info().Int64("lead_id", lead.ID).Msg("lead stored")

	// detached from the request so a slow chat endpoint cannot hold the response
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.notify(notifyCtx, lead)
	}()

	return lead, nil
}

func (s *leadService) List(ctx context.Context, tenantID string, limit, offset int) ([]*models.Lead, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.leadRepo.List(ctx, tenantID, limit, offset)
}

func (s *leadService) Get(ctx context.Context, tenantID string, id int64) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.TenantID != tenantID {
		return nil, common.ErrNotFound
	}
	return lead, nil
}

func (s *leadService) RetryFailed(ctx context.Context) (int, error) {
	leads, err := s.leadRepo.ListFailed(ctx, s.opts.MaxAttempts, retryBatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			break
		}
		leadCtx, cancel := context.WithTimeout(common.WithTenantID(ctx, lead.TenantID), s.opts.NotifyTimeout)
		if s.notify(leadCtx, lead) == models.NotifySent {
			delivered++
		}
		cancel()
	}
	return delivered, nil
}

func (s *leadService) Wait() {
	s.wg.Wait()
}

// notify sends the lead to the site's chat, if one is configured, and records
// the outcome on the lead.
func (s *leadService) notify(ctx context.Context, lead *models.Lead) models.NotifyStatus {
	log := logging.Ctx(ctx).With().Int64("lead_id", lead.ID).Logger()

	status := models.NotifySent
	chatID, ok, err := s.settingsRepo.Get(ctx, lead.TenantID, s.opts.ChatIDSetting)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("lookup notification target failed")
		status = models.NotifyFailed
	case !ok || chatID == "":
		status = models.NotifySkipped
	case s.notifier == nil:
		status = models.NotifySkipped
	default:
		if err := s.notifier.Send(ctx, chatID, notify.FormatLead(lead.TenantID, lead.Data)); err != nil {
			log.Warn().Err(err).Msg("lead notification failed")
			status = models.NotifyFailed
		}
	}

	metrics.RecordNotification(string(status))
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.leadRepo.RecordNotification(recordCtx, lead.ID, status); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("record notification status failed")
	}
	return status
}
