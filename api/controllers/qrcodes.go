package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/internal/qr"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

// ProfileQRCode renders a PNG QR code pointing at the user's public page.
func ProfileQRCode(repo users.Repository, publicURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		username := chi.URLParam(r, "username")
		user, err := repo.FindByUsername(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}

		opts := qr.Options{Level: r.URL.Query().Get("level")}
		if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
			size, err := strconv.Atoi(sizeStr)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "size must be an integer"))
				return
			}
			opts.Size = size
		}

		png, err := qr.GenerateProfileURL(publicURL, user.Username, opts)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
