package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) DB() *gorm.DB { return nil }

func newAuthFixture(t *testing.T) (*fakeUserRepo, *recordingAudit, AuthService, *model.User) {
	t.Helper()
	users := newFakeUserRepo()
	audit := &recordingAudit{}

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	user := &model.User{
		Email:        "cashier@example.com",
		Name:         "Cashier",
		PasswordHash: hash,
		Role:         model.RoleCashier,
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))

	svc := NewAuthService(users, audit, "test-secret", 8, 24)
	return users, audit, svc, user
}

func TestLogin(t *testing.T) {
	_, audit, svc, user := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "cashier@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "access", claims.Type)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.AuditLogin, audit.entries[0].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, _, svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "cashier@example.com", Password: "wrong",
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email: "nobody@example.com", Password: "correct-horse",
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	users, _, svc, user := newAuthFixture(t)
	require.NoError(t, users.SetActive(context.Background(), user.ID, false))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "cashier@example.com", Password: "correct-horse",
	})
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestRefresh(t *testing.T) {
	_, _, svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "cashier@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: resp.AccessToken})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "garbage"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
