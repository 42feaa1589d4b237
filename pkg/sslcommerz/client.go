package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

const (
	DefaultSandboxURL = "https://sandbox.sslcommerz.com"

	sessionPath     = "/gwprocess/v4/api.php"
	validatorPath   = "/validator/api/validationserverAPI.php"
	transactionPath = "/validator/api/merchantTransIDvalidationAPI.php"

	defaultTimeout             = 30 * time.Second
	responseBodyReadLimit int64 = 1024
)

// Gateway status values.
const (
	StatusSuccess   = "SUCCESS"
	StatusFailed    = "FAILED"
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

var (
	errStoreIDRequired       = errors.New("sslcommerz store id is required")
	errStorePasswordRequired = errors.New("sslcommerz store password is required")
)

// Client talks to the SSLCommerz hosted checkout APIs.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	storeID       string
	storePassword string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway host, e.g. to switch to the live endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a gateway client for the given store credentials.
func NewClient(storeID, storePassword string, opts ...Option) (*Client, error) {
	id := strings.TrimSpace(storeID)
	if id == "" {
		return nil, errStoreIDRequired
	}
	if storePassword == "" {
		return nil, errStorePasswordRequired
	}

	client := &Client{
		storeID:       id,
		storePassword: storePassword,
		baseURL:       DefaultSandboxURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Customer carries the cus_* fields of a session request.
type Customer struct {
	Name     string
	Email    string
	Address1 string
	Address2 string
	City     string
	State    string
	Postcode string
	Country  string
	Phone    string
	Fax      string
}

// SessionRequest is the payload of the session (gwprocess) API.
type SessionRequest struct {
	TotalAmount     decimal.Decimal
	Currency        string
	TranID          string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	ProductName     string
	ProductID       string
	Author          string
	ProductCategory string
	ProductProfile  string
	ShippingMethod  string
	MultiCardName   string
	Customer        Customer
	// Values holds value_a..value_d passthrough markers.
	Values [4]string
}

func (r SessionRequest) form(storeID, storePassword string) url.Values {
	form := url.Values{}
	form.Set("store_id", storeID)
	form.Set("store_passwd", storePassword)
	form.Set("total_amount", r.TotalAmount.StringFixed(2))
	form.Set("currency", r.Currency)
	form.Set("tran_id", r.TranID)
	form.Set("success_url", r.SuccessURL)
	form.Set("fail_url", r.FailURL)
	form.Set("cancel_url", r.CancelURL)
	if r.IPNURL != "" {
		form.Set("ipn_url", r.IPNURL)
	}
	form.Set("product_name", r.ProductName)
	form.Set("product_id", r.ProductID)
	form.Set("author", r.Author)
	form.Set("product_category", r.ProductCategory)
	form.Set("product_profile", r.ProductProfile)
	form.Set("shipping_method", r.ShippingMethod)
	form.Set("multi_card_name", r.MultiCardName)
	form.Set("cus_name", r.Customer.Name)
	form.Set("cus_email", r.Customer.Email)
	form.Set("cus_add1", r.Customer.Address1)
	form.Set("cus_add2", r.Customer.Address2)
	form.Set("cus_city", r.Customer.City)
	form.Set("cus_state", r.Customer.State)
	form.Set("cus_postcode", r.Customer.Postcode)
	form.Set("cus_country", r.Customer.Country)
	form.Set("cus_phone", r.Customer.Phone)
	form.Set("cus_fax", r.Customer.Fax)
	for i, key := range []string{"value_a", "value_b", "value_c", "value_d"} {
		if r.Values[i] != "" {
			form.Set(key, r.Values[i])
		}
	}
	return form
}

// Session is the gateway's answer to a session request.
type Session struct {
	Status         string
	FailedReason   string
	SessionKey     string
	GatewayPageURL string
}

// InitSession opens a hosted checkout session. A response whose status is not
// SUCCESS or that lacks a redirect URL is reported as a dependency error.
func (c *Client) InitSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sslcommerz client not configured")
	}
	if strings.TrimSpace(req.TranID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tran_id is required")
	}

	body := req.form(c.storeID, c.storePassword).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionPath, strings.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build session request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var apiResp struct {
		Status         string `json:"status"`
		FailedReason   string `json:"failedreason"`
		SessionKey     string `json:"sessionkey"`
		GatewayPageURL string `json:"GatewayPageURL"`
	}
	if err := c.do(httpReq, "session", &apiResp); err != nil {
		return nil, err
	}

	session := &Session{
		Status:         apiResp.Status,
		FailedReason:   apiResp.FailedReason,
		SessionKey:     apiResp.SessionKey,
		GatewayPageURL: apiResp.GatewayPageURL,
	}
	if !strings.EqualFold(session.Status, StatusSuccess) || session.GatewayPageURL == "" {
		return session, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %q: %s", session.Status, session.FailedReason),
			"session request rejected")
	}
	return session, nil
}

// Validation is the validator API view of a single payment.
type Validation struct {
	Status       string `json:"status"`
	TranID       string `json:"tran_id"`
	ValID        string `json:"val_id"`
	Amount       string `json:"amount"`
	CurrencyType string `json:"currency_type"`
	BankTranID   string `json:"bank_tran_id"`
	TranDate     string `json:"tran_date"`
}

// IsValid reports whether the gateway considers the payment settled.
func (v Validation) IsValid() bool {
	return v.Status == StatusValid || v.Status == StatusValidated
}

// ValidateTransaction asks the validator API about a val_id received on a callback.
func (c *Client) ValidateTransaction(ctx context.Context, valID string) (*Validation, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sslcommerz client not configured")
	}
	if strings.TrimSpace(valID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "val_id is required")
	}

	httpReq, err := c.newQueryRequest(ctx, validatorPath, "val_id", valID)
	if err != nil {
		return nil, err
	}
	var validation Validation
	if err := c.do(httpReq, "validate", &validation); err != nil {
		return nil, err
	}
	return &validation, nil
}

// TransactionQuery lists the gateway's records for one tran_id.
type TransactionQuery struct {
	APIConnect string       `json:"APIConnect"`
	Found      int          `json:"no_of_trans_found"`
	Elements   []Validation `json:"element"`
}

// Settled returns the first element the gateway reports as valid.
func (q TransactionQuery) Settled() (Validation, bool) {
	for _, el := range q.Elements {
		if el.IsValid() {
			return el, true
		}
	}
	return Validation{}, false
}

// QueryTransaction looks up a tran_id through the merchant transaction API.
func (c *Client) QueryTransaction(ctx context.Context, tranID string) (*TransactionQuery, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sslcommerz client not configured")
	}
	if strings.TrimSpace(tranID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tran_id is required")
	}

	httpReq, err := c.newQueryRequest(ctx, transactionPath, "tran_id", tranID)
	if err != nil {
		return nil, err
	}
	var result TransactionQuery
	if err := c.do(httpReq, "transaction query", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) newQueryRequest(ctx context.Context, path, key, value string) (*http.Request, error) {
	q := url.Values{}
	q.Set(key, value)
	q.Set("store_id", c.storeID)
	q.Set("store_passwd", c.storePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gateway request")
	}
	return httpReq, nil
}

func (c *Client) do(httpReq *http.Request, op string, dest any) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("%s request failed", op))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}

// NewFromConfig builds a client from the service configuration.
func NewFromConfig(cfg config.SSLCommerzConfig, opts ...Option) (*Client, error) {
	base := []Option{WithBaseURL(cfg.Endpoint()), WithTimeout(cfg.Timeout)}
	return NewClient(cfg.StoreID, cfg.StorePassword, append(base, opts...)...)
}
