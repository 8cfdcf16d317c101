package report

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/transport"
)

// DefaultRangeDays is used when a request names neither from nor to.
const DefaultRangeDays = 30

type ServiceAPI interface {
	Run(ctx context.Context, kind Kind, p Params) (any, error)
	Location() *time.Location
	Now() time.Time
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Report serves one report kind.
func (h *Handler) Report(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := h.parseParams(r)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		result, err := h.Service.Run(r.Context(), kind, params)
		if err != nil {
			h.WriteAppError(w, ToAppError(err))
			return
		}
		h.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) parseParams(r *http.Request) (Params, error) {
	q := r.URL.Query()
	loc := h.Service.Location()
	p := Params{}

	var err error
	if p.Months, err = optionalInt(q.Get("months"), "months"); err != nil {
		return p, err
	}
	if p.Months > MaxMonths {
		return p, internal.NewValidationFieldError("months", ErrMonthsOutOfRange.Error(), internal.ErrCodeValidationFailed)
	}
	if p.Limit, err = optionalInt(q.Get("limit"), "limit"); err != nil {
		return p, err
	}
	if v := q.Get("include_empty"); v != "" {
		if p.IncludeEmpty, err = strconv.ParseBool(v); err != nil {
			return p, internal.NewValidationFieldError("include_empty", "include_empty must be true or false", internal.ErrCodeValidationFailed)
		}
	}

	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		p.Range = LastDays(h.Service.Now(), DefaultRangeDays, loc)
		return p, nil
	}
	p.Range, err = ParseDateRange(from, to, loc)
	if err != nil {
		return p, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDateRange)
	}
	return p, nil
}

// ParseDateRange reads YYYY-MM-DD bounds in loc. A missing bound takes the
// value of the other one.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	start, err := time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return DateRange{}, errors.Join(ErrInvalidDateRange, err)
	}
	end, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return DateRange{}, errors.Join(ErrInvalidDateRange, err)
	}
	return NewDateRange(start, end)
}

func optionalInt(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, internal.NewValidationFieldError(field, field+" must be a non negative integer", internal.ErrCodeValidationFailed)
	}
	return n, nil
}

// ToAppError maps report errors onto transport errors.
func ToAppError(err error) error {
	var storeErr *StoreError
	switch {
	case errors.Is(err, ErrInvalidDateRange):
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDateRange)
	case errors.Is(err, ErrMonthsOutOfRange):
		return internal.NewValidationFieldError("months", err.Error(), internal.ErrCodeValidationFailed)
	case errors.Is(err, ErrUnknownKind):
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidReportKind)
	case errors.Is(err, ErrUnknownFilterField):
		return internal.NewInternalError("report query failed", err)
	case errors.As(err, &storeErr):
		return internal.NewUnavailableError("Record store unavailable", err)
	}
	if appErr := transport.TranslateError(err); appErr != nil {
		return appErr
	}
	return err
}
