package v1

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	apivalidator "github.com/salestream/ingest/internal/handlers/validator"
	"github.com/salestream/ingest/internal/service"
)

// NotificationRequest mirrors the bucket-notification payload of the
// invoking infrastructure: one newly arrived object.
type NotificationRequest struct {
	Bucket string `json:"bucket_name" validate:"required,bucket_name"`
	Key    string `json:"object_key" validate:"required,object_key"`
	ETag   string `json:"etag"`
}

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type NotificationHandler struct {
	svc       *service.IngestService
	validator *apivalidator.Validator
}

func NewNotificationHandler(svc *service.IngestService) *NotificationHandler {
	v := apivalidator.NewValidator()
	v.Register(apivalidator.NewNotificationValidationRules()...)
	return &NotificationHandler{svc: svc, validator: v}
}

// Handle processes POST /api/v1/notifications. Malformed payloads are fatal
// without retry; everything else is delegated to the ingest service.
func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid notification payload"})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.HandleNotification(r.Context(), service.NotificationForm{
		Bucket: req.Bucket,
		Key:    req.Key,
		ETag:   req.ETag,
	})
	if err != nil {
		var malformed *service.ErrMalformedNotification
		if errors.As(err, &malformed) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: err.Error()})
			return
		}

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
