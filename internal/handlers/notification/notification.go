package notification

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/pkg/auth"
	"github.com/GlebRadaev/influmarket/pkg/utils"
)

//go:generate mockgen -source=notification.go -destination=mock_notification.go -package=notification

const pageSize = 50

type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
}

type NotificationHandler struct {
	notifications Service
}

func New(notifications Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
//
//	@Summary		Latest notifications of the current user
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		domain.Notification
//	@Success		204	{object}	utils.Response	"No notifications"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	list, err := h.notifications.ListByUser(r.Context(), userID, pageSize)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	if len(list) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
