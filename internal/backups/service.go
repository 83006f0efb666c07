package backups

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/enlacehub/enlacehub-backend/internal/analytics"
	"github.com/enlacehub/enlacehub-backend/internal/links"
	"github.com/enlacehub/enlacehub-backend/internal/subscriptions"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/internal/webhooks/outbound"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

// eventBroadcaster fans a backup.completed event out to the user's webhooks.
type eventBroadcaster interface {
	Broadcast(ctx context.Context, userID uuid.UUID, event outbound.Event) error
}

type ServiceParams struct {
	Repo          Repository
	Users         users.Repository
	Links         links.Repository
	Analytics     analytics.Repository
	Subscriptions subscriptions.Repository
	Broadcaster   eventBroadcaster
	Config        config.BackupsConfig
	Logger        *logger.Logger
}

// Service snapshots and restores user data. Backups are a business tier
// feature; the plan gate lives here so both HTTP and cron callers hit it.
type Service struct {
	repo        Repository
	users       users.Repository
	links       links.Repository
	analytics   analytics.Repository
	subs        subscriptions.Repository
	broadcaster eventBroadcaster
	cfg         config.BackupsConfig
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backups repo required")
	}
	if params.Users == nil || params.Links == nil || params.Analytics == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user, link and analytics repos required")
	}
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repo required")
	}
	cfg := params.Config
	if cfg.AnalyticsRowLimit <= 0 {
		cfg.AnalyticsRowLimit = 1000
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = 10
	}
	return &Service{
		repo:        params.Repo,
		users:       params.Users,
		links:       params.Links,
		analytics:   params.Analytics,
		subs:        params.Subscriptions,
		broadcaster: params.Broadcaster,
		cfg:         cfg,
		logg:        params.Logger,
	}, nil
}

// Create assembles a snapshot of the user's profile, links and recent
// analytics and persists it as a backup row.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, backupType enums.BackupType) (*models.Backup, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !backupType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid backup type")
	}

	if err := s.requireBusinessPlan(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	userLinks, err := s.links.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load links")
	}
	views, err := s.analytics.RecentByUser(ctx, userID, s.cfg.AnalyticsRowLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load analytics")
	}

	now := time.Now().UTC()
	snapshot := buildSnapshot(user, userLinks, views, now)
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode snapshot")
	}

	backup := &models.Backup{
		UserID:     userID,
		BackupData: data,
		BackupType: backupType,
		FileSize:   int64(len(data)),
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, backup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist backup")
	}

	s.broadcastCompleted(ctx, backup)
	return backup, nil
}

// List returns the user's most recent backups without the payload kept small
// by the repository limit.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Backup, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID, s.cfg.KeepLast)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list backups")
	}
	return rows, nil
}

// Restore replaces the user's links with the snapshot's. Profile fields and
// analytics rows are left untouched; only links are rebuilt.
func (s *Service) Restore(ctx context.Context, userID, backupID uuid.UUID) (int, error) {
	if userID == uuid.Nil || backupID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id and backup id required")
	}

	backup, err := s.repo.FindByID(ctx, backupID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load backup")
	}
	if backup == nil || backup.UserID != userID {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "backup not found")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(backup.BackupData, &snapshot); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
	}

	restored := snapshot.restoreLinks(userID)
	if err := s.links.ReplaceForUser(ctx, userID, restored); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace links")
	}
	return len(restored), nil
}

// RunAutomatic backs up every business tier account. Per-user failures are
// collected so one broken account does not stop the sweep.
func (s *Service) RunAutomatic(ctx context.Context) (int, error) {
	userIDs, err := s.subs.ListActiveUserIDsByPlan(ctx, enums.PlanTypeBusiness)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list business users")
	}

	var (
		created int
		errs    error
	)
	for _, userID := range userIDs {
		if _, err := s.Create(ctx, userID, enums.BackupTypeAutomatic); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		created++
	}
	return created, errs
}

func (s *Service) requireBusinessPlan(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub == nil || sub.PlanType != enums.PlanTypeBusiness || !sub.Status.Entitles() {
		return pkgerrors.New(pkgerrors.CodePlanRequired, "backups require an active business plan")
	}
	return nil
}

// broadcastCompleted is best effort. The backup row is already persisted and
// a failed webhook delivery must not fail the request.
func (s *Service) broadcastCompleted(ctx context.Context, backup *models.Backup) {
	if s.broadcaster == nil {
		return
	}
	event := outbound.Event{
		Type: enums.WebhookEventBackupCompleted,
		Data: map[string]any{
			"backup_id":   backup.ID.String(),
			"backup_type": string(backup.BackupType),
			"file_size":   backup.FileSize,
		},
		Timestamp: backup.CreatedAt,
		UserID:    backup.UserID,
	}
	if err := s.broadcaster.Broadcast(ctx, backup.UserID, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "backup.broadcast_failed", err)
	}
}
