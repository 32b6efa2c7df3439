package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
)

func newIdentityServer(t *testing.T, status int, body string) *FirebaseClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/accounts:signInWithPassword")
		gt.Equal(t, r.URL.Query().Get("key"), "test-api-key")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return &FirebaseClient{
		apiKey:   "test-api-key",
		endpoint: srv.URL,
		client:   srv.Client(),
	}
}

func TestSignInSuccess(t *testing.T) {
	c := newIdentityServer(t, http.StatusOK,
		`{"email":"traveler@example.com","idToken":"id-token","refreshToken":"refresh-token","expiresIn":"3600"}`)

	result, err := c.SignIn(context.Background(), "traveler@example.com", "secret")
	gt.NoError(t, err)
	gt.V(t, result).NotNil()
	gt.Equal(t, result.Email, "traveler@example.com")
	gt.Equal(t, result.IDToken, "id-token")
	gt.Equal(t, result.RefreshToken, "refresh-token")
}

func TestSignInEmailNotFound(t *testing.T) {
	c := newIdentityServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"EMAIL_NOT_FOUND"}}`)

	_, err := c.SignIn(context.Background(), "nobody@example.com", "secret")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, ErrEmailNotFound))
}

func TestSignInWrongPassword(t *testing.T) {
	for _, code := range []string{"INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS"} {
		t.Run(code, func(t *testing.T) {
			c := newIdentityServer(t, http.StatusBadRequest,
				`{"error":{"code":400,"message":"`+code+`"}}`)

			_, err := c.SignIn(context.Background(), "traveler@example.com", "wrong")
			gt.Error(t, err)
			gt.True(t, errors.Is(err, ErrWrongPassword))
		})
	}
}

func TestSignInUnknownErrorCode(t *testing.T) {
	c := newIdentityServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER"}}`)

	_, err := c.SignIn(context.Background(), "traveler@example.com", "secret")
	gt.Error(t, err)
	gt.False(t, errors.Is(err, ErrEmailNotFound))
	gt.False(t, errors.Is(err, ErrWrongPassword))
	gt.S(t, err.Error()).Contains("sign-in error: TOO_MANY_ATTEMPTS_TRY_LATER")
}

func TestClassifySignInError(t *testing.T) {
	gt.True(t, errors.Is(classifySignInError("EMAIL_NOT_FOUND"), ErrEmailNotFound))
	gt.True(t, errors.Is(classifySignInError("INVALID_PASSWORD"), ErrWrongPassword))
	gt.True(t, errors.Is(classifySignInError("INVALID_LOGIN_CREDENTIALS"), ErrWrongPassword))

	// An unrecognized code must survive into the error text
	err := classifySignInError("USER_DISABLED")
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("USER_DISABLED")
}
