// FilePath: internal/backend/backend.client.go
package backend

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Client talks to the sensor backend. It never retries: a failed call is reported once.
type Client struct {
	http         *resty.Client
	sensorPath   string
	loginPath    string
	forwardToken bool
}

// Credentials is the body of the backend login call
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginEnvelope struct {
	Token string `json:"token"`
	Data  struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	} `json:"data"`
}

func (e loginEnvelope) token() string {
	switch {
	case e.Data.Token != "":
		return e.Data.Token
	case e.Data.AccessToken != "":
		return e.Data.AccessToken
	}
	return e.Token
}

// New creates a backend client from configuration
func New(cfg config.BackendConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:         client,
		sensorPath:   cfg.SensorPath,
		loginPath:    cfg.LoginPath,
		forwardToken: cfg.ForwardToken,
	}
}

// FetchSnapshots issues GET {sensor_path} and returns the snapshot list.
// 401 and 403 come back as auth errors; every other failure is an upstream error.
func (c *Client) FetchSnapshots(ctx context.Context, token string) ([]models.SensorSnapshot, error) {
	var envelope models.SnapshotEnvelope

	req := c.http.R().SetContext(ctx).SetResult(&envelope)
	if c.forwardToken && token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Get(c.sensorPath)
	if err != nil {
		return nil, errors.NewUpstreamError("sensor request failed", 0, err)
	}
	if err := classify(resp, "sensor request rejected"); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Backend] Fetched %d snapshots", len(envelope.Data))
	return envelope.Data, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var envelope loginEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(creds).
		SetResult(&envelope).
		Post(c.loginPath)
	if err != nil {
		return "", errors.NewUpstreamError("login request failed", 0, err)
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return "", errors.NewValidationError("invalid credentials", nil)
	}
	if err := classify(resp, "login rejected"); err != nil {
		return "", err
	}

	token := envelope.token()
	if token == "" {
		return "", errors.NewUpstreamError("login response carried no token", resp.StatusCode(), nil)
	}
	return token, nil
}

func classify(resp *resty.Response, msg string) error {
	if resp.IsSuccess() {
		return nil
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthError(msg, nil)
	}
	return errors.NewUpstreamError("unexpected backend status "+resp.Status(), resp.StatusCode(), nil)
}
