package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/dashboard"
	"github.com/couchcryptid/astroweather-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// maxBodyBytes bounds guidance request bodies.
const maxBodyBytes = 64 << 10

// kindInvalidDate labels date parameters that are not YYYY-MM-DD.
const kindInvalidDate = "InvalidDate"

// WeatherService is the dashboard behaviour the API exposes.
type WeatherService interface {
	Lookup(ctx context.Context, location string, date time.Time) (domain.WeatherReport, error)
	Insights(ctx context.Context, location string, date time.Time, emotion string) (dashboard.Insights, error)
	Advisor() domain.Advisor
	Now() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type handlers struct {
	svc    WeatherService
	logger *slog.Logger
}

func (h *handlers) weather(w http.ResponseWriter, r *http.Request) {
	date, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Lookup(r.Context(), r.URL.Query().Get("location"), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (h *handlers) insights(w http.ResponseWriter, r *http.Request) {
	date, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out, err := h.svc.Insights(r.Context(), q.Get("location"), date, strings.TrimSpace(q.Get("emotion")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (h *handlers) clothing(w http.ResponseWriter, r *http.Request) {
	var in domain.ClothingAndSafetyInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.svc.Advisor().ClothingAndSafety(r.Context(), in)
	h.writeGuidance(w, r, out, err)
}

func (h *handlers) activity(w http.ResponseWriter, r *http.Request) {
	var in domain.ActivityInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Emotion) == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "emotion is required"})
		return
	}
	out, err := h.svc.Advisor().SuggestActivity(r.Context(), in)
	h.writeGuidance(w, r, out, err)
}

func (h *handlers) eco(w http.ResponseWriter, r *http.Request) {
	var in domain.EcoAwarenessInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Location) == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "location is required"})
		return
	}
	out, err := h.svc.Advisor().EcoAwareness(r.Context(), in)
	h.writeGuidance(w, r, out, err)
}

func (h *handlers) writeGuidance(w http.ResponseWriter, r *http.Request, out any, err error) {
	if err != nil {
		h.logger.Warn("guidance request failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorResponse{Error: "guidance is unavailable right now"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

// writeError maps lookup errors onto status codes. Validation failures carry
// their kind so clients can distinguish them.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Kind: string(verr.Kind)})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})
	default:
		h.logger.Error("weather request failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// queryDate reads the date parameter, defaulting to today. It writes a 400 and
// returns false when the value does not parse.
func (h *handlers) queryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return h.svc.Now(), true
	}
	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("date %q must be in YYYY-MM-DD format", raw),
			Kind:  kindInvalidDate,
		})
		return time.Time{}, false
	}
	return date, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
