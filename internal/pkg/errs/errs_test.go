package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError_KnownCode(t *testing.T) {
	req := require.New(t)

	customErr := NewError(ErrUserBlocked)
	req.Equal(ErrUserBlocked, customErr.Code)
	req.Equal(http.StatusForbidden, customErr.Status)
	req.NotEmpty(customErr.Message)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	req := require.New(t)

	customErr := NewError(9999)
	req.Equal(ErrUnknown, customErr.Code)
	req.Equal(http.StatusInternalServerError, customErr.Status)
}

func TestNewError_DefaultsStatusToOK(t *testing.T) {
	req := require.New(t)

	// WebSocket-only errors carry no HTTP status in the map.
	customErr := NewError(ErrMessageContentEmpty)
	req.Equal(http.StatusOK, customErr.Status)
}

func TestCustomError_Error(t *testing.T) {
	req := require.New(t)

	customErr := NewError(ErrRoomNotFound)
	req.Contains(customErr.Error(), "2103")
	req.Contains(customErr.Error(), "Chat room not found.")
}
