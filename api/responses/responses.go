package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
	"github.com/angelmondragon/shipcalc-backend/pkg/types"
)

// requestIDHeader is set on the response by the request id middleware.
const requestIDHeader = "X-Request-Id"

// WriteSuccess writes data inside the success envelope with a 200 status.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.NewSuccess(data))
}

// WriteError maps err onto its public code and status. Untyped errors become
// internal errors and never leak their message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	dump := pkgerrors.Dump(typed)
	payload := types.NewError(string(typed.Code()), msg).
		WithRetryable(dump.Retryable).
		WithRequestID(w.Header().Get(requestIDHeader))

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload = payload.WithDetails(details)
		}
	}

	if logg != nil {
		fields := dump.Fields()

		if d := typed.Details(); d != nil {
			if dm, ok := d.(map[string]any); ok {
				if field, ok := dm["field"]; ok {
					fields["field"] = field
				}
			}
		}

		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
