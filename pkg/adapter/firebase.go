package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

var (
	ErrEmailNotFound = goerr.New("email not registered")
	ErrWrongPassword = goerr.New("wrong password")
)

// Identity is the interface for the identity provider
type Identity interface {
	// SignIn authenticates with email and password and returns provider tokens
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	// SignUp creates a new account and returns its UID
	SignUp(ctx context.Context, email, password string) (string, error)
	// Verify validates an ID token and returns the account email
	Verify(ctx context.Context, idToken string) (string, error)
}

// SignInResult carries the provider tokens issued on a successful sign-in
type SignInResult struct {
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

const identityToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1"

// FirebaseClient implements Identity. Password sign-in goes through the
// identitytoolkit REST API (keyed by the web API key); account creation and
// token verification go through the Admin SDK.
type FirebaseClient struct {
	apiKey   string
	endpoint string
	auth     *auth.Client
	client   *http.Client
}

type FirebaseOption func(*FirebaseClient)

// WithIdentityEndpoint overrides the identitytoolkit endpoint
func WithIdentityEndpoint(endpoint string) FirebaseOption {
	return func(c *FirebaseClient) {
		c.endpoint = endpoint
	}
}

// NewFirebase creates a new Firebase identity client. clientOpts are passed
// to the Admin SDK (e.g. option.WithCredentialsFile).
func NewFirebase(ctx context.Context, apiKey string, clientOpts []option.ClientOption, opts ...FirebaseOption) (*FirebaseClient, error) {
	if apiKey == "" {
		return nil, goerr.New("firebase api key is required")
	}

	app, err := firebase.NewApp(ctx, nil, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firebase app")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firebase auth client")
	}

	c := &FirebaseClient{
		apiKey:   apiKey,
		endpoint: identityToolkitEndpoint,
		auth:     authClient,
		client:   &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	SignInResult
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *FirebaseClient) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	body, err := json.Marshal(signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal sign-in request")
	}

	url := c.endpoint + "/accounts:signInWithPassword?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sign-in request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call identity provider")
	}
	defer resp.Body.Close()

	var result signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode sign-in response")
	}

	if result.Error != nil {
		return nil, classifySignInError(result.Error.Message)
	}

	return &result.SignInResult, nil
}

// classifySignInError maps the provider's error codes to typed errors.
// Unrecognized codes fall back to a generic sign-in error; the provider code
// stays in the error text so it survives to the presentation surface.
func classifySignInError(message string) error {
	switch message {
	case "EMAIL_NOT_FOUND":
		return goerr.Wrap(ErrEmailNotFound, "sign-in rejected")
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return goerr.Wrap(ErrWrongPassword, "sign-in rejected")
	default:
		return goerr.New("sign-in error: " + message)
	}
}

func (c *FirebaseClient) SignUp(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	user, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "registration failed")
	}

	return user.UID, nil
}

func (c *FirebaseClient) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := c.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", goerr.Wrap(err, "failed to verify ID token")
	}

	email, ok := token.Claims["email"].(string)
	if !ok || email == "" {
		return "", goerr.New("ID token has no email claim", goerr.V("uid", token.UID))
	}

	return email, nil
}
