package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/trio-connect/internal/errors"
	"github.com/oggyb/trio-connect/internal/profile"
	"github.com/oggyb/trio-connect/internal/protocol"
	"github.com/oggyb/trio-connect/internal/unlock"
)

func TestMap(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code codes.Code
	}{
		{gorm.ErrRecordNotFound, codes.NotFound},
		{fmt.Errorf("load: %w", protocol.ErrInvalidRequest), codes.FailedPrecondition},
		{profile.ErrInvalidAge, codes.InvalidArgument},
		{unlock.ErrNotParticipant, codes.PermissionDenied},
		{unlock.ErrAlreadyUnlocked, codes.AlreadyExists},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{fmt.Errorf("boom"), codes.Internal},
	} {
		st, ok := status.FromError(svcErr.Map(tc.err))
		assert.True(t, ok)
		assert.Equal(t, tc.code, st.Code(), tc.err.Error())
	}
	assert.NoError(t, svcErr.Map(nil))
}

func TestMapKeepsStatusErrors(t *testing.T) {
	in := svcErr.InvalidArgument("bad id")
	assert.Equal(t, in, svcErr.Map(in))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, svcErr.HTTPStatus(profile.ErrUnknownUser))
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus(unlock.ErrPaymentMismatch))
	assert.Equal(t, http.StatusConflict, svcErr.HTTPStatus(unlock.ErrAlreadyUnlocked))
	assert.Equal(t, http.StatusInternalServerError, svcErr.HTTPStatus(fmt.Errorf("x")))
}
