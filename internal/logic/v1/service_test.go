package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/cookie-auth-service/internal/core/domain"
	"github.com/duynhne/cookie-auth-service/internal/core/repository"
)

type harness struct {
	svc   *AuthService
	users *repository.MemoryUserRepository
	clock *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRepo(t, repository.NewMemoryUserRepository())
}

func newHarnessWithRepo(t *testing.T, users domain.UserRepository) *harness {
	t.Helper()
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Now()}
	tokens := NewTokenCodec([]byte("test-secret"), DefaultTokenTTL, WithClock(clock.Now))
	cookies := NewSessionCookie(DefaultCookieName, tokens.TTL(), false)

	h := &harness{svc: NewAuthService(users, hasher, tokens, cookies), clock: clock}
	if mem, ok := users.(*repository.MemoryUserRepository); ok {
		h.users = mem
	}
	return h
}

// cookieHeader converts a Set-Cookie into the Cookie header a browser would send back.
func cookieHeader(c *http.Cookie) string {
	return c.Name + "=" + c.Value
}

func (h *harness) register(t *testing.T, userName, password string) {
	t.Helper()
	res, err := h.svc.Register(context.Background(), domain.RegisterRequest{
		FirstName: "First", SurName: "Last", UserName: userName, Password: password,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
}

func (h *harness) login(t *testing.T, userName, password string) domain.AuthResult {
	t.Helper()
	res, err := h.svc.Login(context.Background(), domain.LoginRequest{UserName: userName, Password: password})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Cookie)
	return res
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "analytical")

	res := h.login(t, "ada", "analytical")
	info, ok := res.UserInfo.(domain.UserInfo)
	require.True(t, ok)
	assert.Equal(t, "ada", info.UserName)
	assert.Equal(t, "First", info.FirstName)
	assert.NotEmpty(t, info.ID)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(body)), "password")
	assert.NotContains(t, string(body), "jwt")

	stored, err := h.users.GetByUserName(context.Background(), "ada")
	require.NoError(t, err)
	assert.NotEqual(t, "analytical", stored.PasswordHash)
}

func TestRegisterThenLogin_LongPasswords(t *testing.T) {
	h := newHarness(t)

	passwords := map[string]string{
		"ascii":     strings.Repeat("p", 73),
		"multibyte": strings.Repeat("パスワード", 10),
	}
	for userName, password := range passwords {
		require.Greater(t, len(password), 72)
		h.register(t, userName, password)

		res := h.login(t, userName, password)
		info, ok := res.UserInfo.(domain.UserInfo)
		require.True(t, ok)
		assert.Equal(t, userName, info.UserName)
	}
}

func TestRegister_DuplicateUser(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "pw1")

	res, err := h.svc.Register(context.Background(), domain.RegisterRequest{UserName: "ada", Password: "pw2"})
	require.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, domain.Failure(), res)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "right")

	wrong, errWrong := h.svc.Login(context.Background(), domain.LoginRequest{UserName: "ada", Password: "wrong"})
	unknown, errUnknown := h.svc.Login(context.Background(), domain.LoginRequest{UserName: "nobody", Password: "right"})

	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Nil(t, wrong.Cookie)
	assert.Nil(t, unknown.Cookie)

	wrongJSON, err := json.Marshal(wrong)
	require.NoError(t, err)
	unknownJSON, err := json.Marshal(unknown)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"userInfo":{}}`, string(wrongJSON))
	assert.Equal(t, string(wrongJSON), string(unknownJSON))
}

func TestVerifySession(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "pw")
	login := h.login(t, "ada", "pw")

	res, err := h.svc.VerifySession(context.Background(), cookieHeader(login.Cookie))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, login.UserInfo, res.UserInfo)
}

func TestVerifySession_ExpiresAfterFourHours(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "pw")
	header := cookieHeader(h.login(t, "ada", "pw").Cookie)

	h.clock.Advance(4*time.Hour - time.Minute)
	res, err := h.svc.VerifySession(context.Background(), header)
	require.NoError(t, err)
	assert.True(t, res.Success)

	h.clock.Advance(2 * time.Minute)
	res, err = h.svc.VerifySession(context.Background(), header)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, domain.Failure(), res)
}

func TestVerifySession_Failures(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.VerifySession(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, res.Success)
	assert.Nil(t, res.UserInfo)

	res, err = h.svc.VerifySession(context.Background(), "jwt=garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, res.Success)

	// Token for a user that is not in the store.
	token, err := h.svc.tokens.Issue("6a0c1f7e-0000-4000-8000-000000000000")
	require.NoError(t, err)
	res, err = h.svc.VerifySession(context.Background(), "jwt="+token)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, res.Success)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	// No prior session at all.
	res := h.svc.Logout(context.Background())
	assert.True(t, res.Success)
	assert.Nil(t, res.UserInfo)
	require.NotNil(t, res.Cookie)
	assert.Equal(t, DefaultCookieName, res.Cookie.Name)
	assert.Empty(t, res.Cookie.Value)
	assert.True(t, res.Cookie.Expires.Before(time.Now()))

	h.register(t, "ada", "pw")
	h.login(t, "ada", "pw")

	// The browser now sends the cleared cookie.
	after, err := h.svc.VerifySession(context.Background(), cookieHeader(h.svc.Logout(context.Background()).Cookie))
	require.Error(t, err)
	assert.False(t, after.Success)
}

func TestListUsers(t *testing.T) {
	h := newHarness(t)
	h.register(t, "bob", "pw")
	h.register(t, "ada", "pw")
	header := cookieHeader(h.login(t, "bob", "pw").Cookie)

	res, err := h.svc.ListUsers(context.Background(), header)
	require.NoError(t, err)
	require.True(t, res.Success)

	users, ok := res.UserInfo.([]domain.UserInfo)
	require.True(t, ok)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].UserName)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(body)), "password")
}

func TestListUsers_RequiresSession(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada", "pw")

	for _, header := range []string{"", "jwt=forged.token.value", "other=1"} {
		res, err := h.svc.ListUsers(context.Background(), header)
		require.Error(t, err)
		assert.Equal(t, domain.Failure(), res, "header %q", header)
	}
}

type brokenRepo struct {
	*repository.MemoryUserRepository
	err error
}

func (r brokenRepo) Create(context.Context, domain.NewUser) (string, error) {
	return "", r.err
}

func (r brokenRepo) GetByUserName(context.Context, string) (*domain.UserRecord, error) {
	return nil, r.err
}

func (r brokenRepo) List(context.Context) ([]domain.UserInfo, error) {
	return nil, r.err
}

func TestStoreUnavailable(t *testing.T) {
	storeErr := errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp: connection refused"))
	mem := repository.NewMemoryUserRepository()
	h := newHarnessWithRepo(t, brokenRepo{MemoryUserRepository: mem, err: storeErr})

	reg, err := h.svc.Register(context.Background(), domain.RegisterRequest{UserName: "ada", Password: "pw"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, domain.Failure(), reg)

	login, err := h.svc.Login(context.Background(), domain.LoginRequest{UserName: "ada", Password: "pw"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, login.Success)
	assert.Nil(t, login.Cookie)

	// A valid session whose listing fails collapses to the generic failure.
	id, err := mem.Create(context.Background(), domain.NewUser{UserName: "ada", PasswordHash: "x"})
	require.NoError(t, err)
	token, err := h.svc.tokens.Issue(id)
	require.NoError(t, err)

	list, err := h.svc.ListUsers(context.Background(), "jwt="+token)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, domain.Failure(), list)
}
