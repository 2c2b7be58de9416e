package services

import (
	"context"
	"errors"
	"testing"

	"botsprinter/config"
	"botsprinter/types"
	"botsprinter/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUserService(t *testing.T) *UserService {
	return NewUserService(openTestDB(t), config.JWTConfig{Secret: "test-secret", Expiration: 3600}, zap.NewNop())
}

func TestLogin(t *testing.T) {
	users := newTestUserService(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, "alice", "wonderland", types.RoleOperator)
	require.NoError(t, err)

	res, err := users.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)

	claims, err := utils.VerifyToken("test-secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, types.RoleOperator, claims.Role)
	assert.NotEmpty(t, claims.SessionID)

	_, err = users.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = users.Login(ctx, "nobody", "wonderland")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestCreateUserValidation(t *testing.T) {
	users := newTestUserService(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, "", "secret", types.RoleViewer)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = users.CreateUser(ctx, "bob", "x", types.RoleViewer)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = users.CreateUser(ctx, "bob", "secret", types.Role("root"))
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = users.CreateUser(ctx, "bob", "secret", types.RoleViewer)
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, "bob", "secret", types.RoleViewer)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestLastAdminIsProtected(t *testing.T) {
	users := newTestUserService(t)
	ctx := context.Background()

	admin, err := users.CreateUser(ctx, "root", "secret", types.RoleAdmin)
	require.NoError(t, err)

	_, err = users.UpdateUser(ctx, admin.ID, types.RoleViewer, "")
	assert.True(t, errors.Is(err, ErrLastAdmin))
	assert.True(t, errors.Is(users.DeleteUser(ctx, admin.ID), ErrLastAdmin))

	second, err := users.CreateUser(ctx, "root2", "secret", types.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, users.DeleteUser(ctx, admin.ID))

	_, err = users.GetUser(ctx, admin.ID)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	_, err = users.GetUser(ctx, second.ID)
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	users := newTestUserService(t)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, "carol", "before", types.RoleViewer)
	require.NoError(t, err)

	password, err := users.ResetPassword(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, password, resetPasswordLength)

	_, err = users.Login(ctx, "carol", "before")
	assert.Error(t, err)
	_, err = users.Login(ctx, "carol", password)
	assert.NoError(t, err)

	_, err = users.ResetPassword(ctx, u.ID+99)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUpdateUserChangesRoleAndPassword(t *testing.T) {
	users := newTestUserService(t)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, "dave", "first", types.RoleViewer)
	require.NoError(t, err)

	updated, err := users.UpdateUser(ctx, u.ID, types.RoleOperator, "second")
	require.NoError(t, err)
	assert.Equal(t, types.RoleOperator, updated.Role)

	res, err := users.Login(ctx, "dave", "second")
	require.NoError(t, err)
	assert.Equal(t, types.RoleOperator, res.User.Role)

	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
