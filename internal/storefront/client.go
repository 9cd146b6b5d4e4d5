package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// apiName labels errors and the circuit breaker for calls to the API server.
const apiName = "storefront-api"

// Credentials are the HTTP Basic credentials of the logged-in user.
type Credentials struct {
	Username string
	Password string
}

// API is the subset of the storefront HTTP API the product page uses.
type API interface {
	// GetProduct returns ErrNotFound when the server answers null.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListReviews(ctx context.Context, productID int64) ([]domain.Review, error)
	// Login returns ErrUnauthorized when the credentials do not match.
	Login(ctx context.Context, creds Credentials) (*domain.User, error)
	CreateReview(ctx context.Context, creds Credentials, productID int64, draft Draft) (*domain.Review, error)
}

// Client talks to the storefront API through a retrying, circuit-broken
// HTTP client.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	// reviews shares the breaker of http but fails fast with a typed
	// unavailable error while it is open.
	reviews *httpclient.CircuitBreakerClient
}

// NewClient creates an API client for the server at baseURL.
func NewClient(baseURL string, cfg httpclient.Config, logger *slog.Logger) *Client {
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(apiName),
		logger,
	)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    breaker,
		reviews: breaker.WithFallback(reviewsUnavailable),
	}
}

func reviewsUnavailable(context.Context, error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable(reviewsUnavailableNotice)
}

type createReviewRequest struct {
	ProductID int64  `json:"product_id"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	if err := c.getJSON(ctx, c.http, "/api/product/select/"+strconv.FormatInt(id, 10), &product); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return product, nil
}

func (c *Client) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.getJSON(ctx, c.reviews, "/api/review/"+strconv.FormatInt(productID, 10), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*domain.User, error) {
	body, err := json.Marshal(loginRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/api/user/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateReview(ctx context.Context, creds Credentials, productID int64, draft Draft) (*domain.Review, error) {
	body, err := json.Marshal(createReviewRequest{ProductID: productID, Rating: draft.Rating, Content: draft.Content})
	if err != nil {
		return nil, fmt.Errorf("encode review: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/review", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create review request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.Username, creds.Password)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var review domain.Review
	if err := decodeResponse(resp, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) getJSON(ctx context.Context, hc *httpclient.CircuitBreakerClient, path string, dst any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build url for %s: %w", path, err)
	}
	resp, err := hc.Get(ctx, u)
	if err != nil {
		return err
	}
	return decodeResponse(resp, dst)
}

// decodeResponse closes resp.Body. Non-2xx responses become AppErrors.
func decodeResponse(resp *http.Response, dst any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, apiName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", apiName, err)
	}
	return nil
}
