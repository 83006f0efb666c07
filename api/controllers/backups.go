package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/internal/backups"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

// backupSummary omits the snapshot payload from list responses.
type backupSummary struct {
	ID         uuid.UUID        `json:"id"`
	BackupType enums.BackupType `json:"backup_type"`
	FileSize   int64            `json:"file_size"`
	CreatedAt  time.Time        `json:"created_at"`
}

func toBackupSummary(backup *models.Backup) backupSummary {
	return backupSummary{
		ID:         backup.ID,
		BackupType: backup.BackupType,
		FileSize:   backup.FileSize,
		CreatedAt:  backup.CreatedAt,
	}
}

// CreateBackup takes a manual snapshot of the user's data.
func CreateBackup(svc *backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backups service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		backup, err := svc.Create(ctx, userID, enums.BackupTypeManual)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toBackupSummary(backup))
	}
}

// ListBackups returns the user's most recent snapshots.
func ListBackups(svc *backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backups service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]backupSummary, 0, len(rows))
		for i := range rows {
			items = append(items, toBackupSummary(&rows[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// RestoreBackup replaces the user's links from a snapshot.
func RestoreBackup(svc *backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backups service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		backupID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid backup id"))
			return
		}

		restored, err := svc.Restore(ctx, userID, backupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"links_restored": restored})
	}
}
