package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"fieldpulse/internal/infrastructure"
)

// ErrorHandler renders errors as structured JSON responses
type ErrorHandler struct {
	logger *slog.Logger
	debug  bool
}

// NewErrorHandler creates an error handler. With debug enabled, internal
// error messages pass through to the client verbatim.
func NewErrorHandler(logger *slog.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger, debug: debug}
}

// HandleError writes an error response. Non-APIError values are logged and
// collapsed to a generic 500.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		h.logger.ErrorContext(ctx, "unhandled error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apiErr = ErrInternal
		if h.debug {
			apiErr = New(http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error_code", apiErr.ErrorCode),
			slog.String("error", apiErr.Message),
		)
	}

	resp := *apiErr
	resp.TraceID = infrastructure.GetTraceID(ctx)
	if err := render.Render(w, r, &resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to render error response",
			slog.String("error", err.Error()))
	}
}
