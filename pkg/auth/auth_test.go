package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/pkg/auth"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, ok := auth.FromContext(ctx)
	require.False(t, ok)

	want := auth.Identity{UserID: uuid.New(), Name: "Sari", Role: auth.RoleStaff}
	got, ok := auth.FromContext(auth.SetAuthContext(ctx, want))
	require.True(t, ok)
	require.Equal(t, want, got)
	require.True(t, got.Role.IsStaff())
	require.False(t, got.Role.IsAdmin())
}

func TestIdentity_CanAccess(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	require.True(t, auth.Identity{UserID: owner, Role: auth.RoleUser}.CanAccess(owner))
	require.False(t, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser}.CanAccess(owner))
	require.True(t, auth.Identity{UserID: uuid.New(), Role: auth.RoleStaff}.CanAccess(owner))
	require.True(t, auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}.CanAccess(owner))
}
