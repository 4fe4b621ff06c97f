package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/admin"
	"github.com/oggyb/trio-connect/internal/profile"
	"github.com/oggyb/trio-connect/internal/protocol"
	"github.com/oggyb/trio-connect/internal/selector"
	"github.com/oggyb/trio-connect/internal/unlock"
	"github.com/oggyb/trio-connect/internal/utils/pagination"
)

// Code classifies err as a gRPC code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK

	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, protocol.ErrUnknownUser),
		errors.Is(err, profile.ErrUnknownUser),
		errors.Is(err, admin.ErrUserNotFound),
		errors.Is(err, admin.ErrReportNotFound),
		errors.Is(err, unlock.ErrMatchNotFound):
		return codes.NotFound

	case errors.Is(err, protocol.ErrSelfAction),
		errors.Is(err, protocol.ErrInvalidPurpose),
		errors.Is(err, protocol.ErrInvalidReason),
		errors.Is(err, profile.ErrInvalidAge),
		errors.Is(err, profile.ErrInvalidGender),
		errors.Is(err, profile.ErrInvalidLocation),
		errors.Is(err, profile.ErrInvalidPhoto),
		errors.Is(err, profile.ErrEmptyUpdate),
		errors.Is(err, selector.ErrInvalidFilter),
		errors.Is(err, admin.ErrInvalidAudience),
		errors.Is(err, admin.ErrEmptyMessage),
		errors.Is(err, pagination.ErrInvalidToken),
		errors.Is(err, unlock.ErrPaymentMismatch):
		return codes.InvalidArgument

	case errors.Is(err, protocol.ErrInvalidRequest),
		errors.Is(err, selector.ErrNotRegistered),
		errors.Is(err, unlock.ErrNoCredit),
		errors.Is(err, unlock.ErrHandleUnavailable):
		return codes.FailedPrecondition

	case errors.Is(err, unlock.ErrNotParticipant):
		return codes.PermissionDenied

	case errors.Is(err, unlock.ErrAlreadyUnlocked):
		return codes.AlreadyExists

	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded

	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	return codes.Internal
}

// Map converts domain, repo and infra errors into gRPC status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := Code(err)
	switch code {
	case codes.NotFound:
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status.Error(code, "record not found")
		}
	case codes.DeadlineExceeded:
		return status.Error(code, "request timed out")
	case codes.Canceled:
		return status.Error(code, "request was canceled")
	case codes.Internal:
		// fallback → bubble up error message for debugging
	}
	return status.Error(code, err.Error())
}

// HTTPStatus converts err into an HTTP status code.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return 499
	}
	return http.StatusInternalServerError
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}
