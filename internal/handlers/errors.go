package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	authmw "github.com/Skotchmaster/laundry_service/pkg/middleware/auth"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidOrderInput, http.StatusBadRequest},
	{domain.ErrInvalidCategory, http.StatusBadRequest},
	{domain.ErrInvalidVoucher, http.StatusBadRequest},
	{domain.ErrBelowMinimumOrder, http.StatusUnprocessableEntity},
	{domain.ErrVoucherExpired, http.StatusUnprocessableEntity},
	{domain.ErrVoucherNotFound, http.StatusNotFound},
	{domain.ErrClaimNotFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrVoucherInactive, http.StatusConflict},
	{domain.ErrVoucherExhausted, http.StatusConflict},
	{domain.ErrAlreadyClaimed, http.StatusConflict},
	{domain.ErrAlreadyUsed, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
}

func statusFor(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// fail logs err under event and converts it to an HTTP error. Domain errors
// keep their message; anything else is reported as internalMsg.
func fail(l *slog.Logger, event string, err error, internalMsg string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", internalMsg, "error", err)
		return echo.NewHTTPError(status, internalMsg)
	}
	l.Warn(event, "status", status, "reason", err.Error(), "error", err)
	return echo.NewHTTPError(status, err.Error())
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
