package service

import (
	"context"
	"testing"
	"time"

	"roboquest_backend/internal/config"
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup(email string) SignupInput {
	return SignupInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		BirthDate: "2014-03-02",
	}
}

func TestSignup_CreatesAccountAndProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, validSignup("Kid@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "kid@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	p, err := f.progress.ProgressRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, 2, p.DailyGoal)
	assert.Equal(t, []string{"2024-05-10"}, p.LoginDates)

	s, err := f.progress.SettingsRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "light", s.Theme)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]func(*SignupInput){
		"bad email":      func(in *SignupInput) { in.Email = "not-an-email" },
		"short password": func(in *SignupInput) { in.Password = "123" },
		"no first name":  func(in *SignupInput) { in.FirstName = "  " },
		"bad birth date": func(in *SignupInput) { in.BirthDate = "03/02/2014" },
		"bad parent":     func(in *SignupInput) { in.ParentEmail = "parent" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validSignup("kid@example.com")
			mutate(&in)
			_, err := f.auth.Signup(ctx, in)
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, validSignup("kid@example.com"))
	require.NoError(t, err)
	_, err = f.auth.Signup(ctx, validSignup("KID@example.com"))
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin_StreakAndToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, validSignup("kid@example.com"))
	require.NoError(t, err)

	f.setNow(day(2024, 5, 11))
	res, err := f.auth.Login(ctx, "kid@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Session.AccessToken)
	assert.Equal(t, "bearer", res.Session.TokenType)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, 1, res.Progress.StreakDays)
	assert.Equal(t, "2024-05-11", res.Progress.LastLoginDate)

	id, err := f.auth.Verify(ctx, res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, model.RoleUser, id.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, validSignup("kid@example.com"))
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "kid@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	_, err = f.auth.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestVerify_AdminRoleAndReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := util.GenerateJWT("admin-1", "Admin@RoboQuest.test", "test-secret", time.Hour)
	require.NoError(t, err)

	id, err := f.auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)
	assert.True(t, id.CanAdminister())

	f.auth.SetAdmins(config.AdminConfig{})
	id, err = f.auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, id.Role)
}

func TestVerify_RejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Verify(ctx, "")
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	_, err = f.auth.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	other, err := util.GenerateJWT("u1", "kid@example.com", "another-secret", time.Hour)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, other)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	expired, err := util.GenerateJWT("u1", "kid@example.com", "test-secret", -time.Minute)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, expired)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.auth.Signup(ctx, validSignup("kid@example.com"))
	require.NoError(t, err)
	id := &model.Identity{UserID: user.ID, Email: user.Email, Role: model.RoleUser}

	name := "Grace"
	parent := "parent@example.com"
	view, err := f.auth.UpdateProfile(ctx, id, ProfilePatch{FirstName: &name, ParentEmail: &parent})
	require.NoError(t, err)
	assert.Equal(t, "Grace", view.FirstName)
	assert.Equal(t, "Lovelace", view.LastName)
	assert.Equal(t, "parent@example.com", view.ParentEmail)

	bad := "nope"
	_, err = f.auth.UpdateProfile(ctx, id, ProfilePatch{ParentEmail: &bad})
	assert.ErrorIs(t, err, util.ErrValidation)

	current, err := f.auth.CurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grace", current.FirstName)

	ghost, err := f.auth.CurrentUser(ctx, &model.Identity{UserID: "gone", Email: "gone@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "gone", ghost.ID)
}
