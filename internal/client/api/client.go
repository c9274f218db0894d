// Package api is the HTTP client for the expense server. It maps transport
// statuses onto the shared sentinel errors so callers branch with errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

// Client talks to the expense server. Safe for use from multiple goroutines;
// the bearer token is guarded because sign-in happens concurrently with
// background syncs.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// SetToken installs the bearer token used for protected calls. An empty
// token reverts the client to anonymous.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Ping probes server reachability. Used as the connectivity gate for the
// sync engine.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

type credentialsRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	DefaultCurrency string `json:"default_currency,omitempty"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id,omitempty"`
}

func (c *Client) Register(ctx context.Context, username, password, defaultCurrency string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register",
		credentialsRequest{Username: username, Password: password, DefaultCurrency: defaultCurrency}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login",
		credentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Parse(ctx context.Context, req *ParseRequest) (*ParseResponse, error) {
	var resp ParseResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/parse", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, req *UpdateExpenseRequest) (*models.ExpenseRecord, error) {
	var payload ExpensePayload
	if err := c.do(ctx, http.MethodPut, "/api/v1/expenses/"+id, req, &payload); err != nil {
		return nil, err
	}
	return payload.ToRecord(), nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/expenses/"+id, nil, nil)
}

func (c *Client) ListExpenses(ctx context.Context) ([]*models.ExpenseRecord, error) {
	var resp struct {
		Expenses []ExpensePayload `json:"expenses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses", nil, &resp); err != nil {
		return nil, err
	}
	records := make([]*models.ExpenseRecord, 0, len(resp.Expenses))
	for i := range resp.Expenses {
		records = append(records, resp.Expenses[i].ToRecord())
	}
	return records, nil
}

func (c *Client) SyncMetadata(ctx context.Context, snap *models.MetadataSnapshot) error {
	return c.do(ctx, http.MethodPost, "/api/v1/metadata/sync", snap, nil)
}

func (c *Client) FetchMetadata(ctx context.Context) (*models.MetadataSnapshot, error) {
	var snap models.MetadataSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/metadata", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

type presignResponse struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
}

// PresignAudio asks the server for a short-lived upload URL and the object
// key the audio will live under.
func (c *Client) PresignAudio(ctx context.Context) (url, objectKey string, err error) {
	var resp presignResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/audio/presign", nil, &resp); err != nil {
		return "", "", err
	}
	return resp.URL, resp.ObjectKey, nil
}

// UploadAudio PUTs the local audio file to a presigned URL. The URL already
// carries its own authorization, so no bearer token is attached.
func (c *Client) UploadAudio(ctx context.Context, presignedURL, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, f)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("audio upload failed with status %d", resp.StatusCode)
	}
	return nil
}

// do executes one JSON round trip against the API.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", common.ErrProtocol, path, err)
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, body.Error)
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrQuotaExceeded, body.Error)
	default:
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body.Error)
	}
}

type errorBody struct {
	Error string `json:"error"`
}
