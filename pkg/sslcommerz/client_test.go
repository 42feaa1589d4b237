package sslcommerz

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("store", "secret",
		WithBaseURL("http://gateway.test/"),
		WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", "secret")
	require.ErrorIs(t, err, errStoreIDRequired)

	_, err = NewClient("store", "")
	require.ErrorIs(t, err, errStorePasswordRequired)
}

func TestNewFromConfig_UsesConfiguredEndpoint(t *testing.T) {
	client, err := NewFromConfig(config.SSLCommerzConfig{StoreID: "store", StorePassword: "secret", Sandbox: false})
	require.NoError(t, err)
	assert.Equal(t, "https://securepay.sslcommerz.com", client.baseURL)
}

func TestInitSession_PostsFormAndReturnsGatewayURL(t *testing.T) {
	var captured url.Values
	var capturedURL, contentType string

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		contentType = req.Header.Get("Content-Type")
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		captured, err = url.ParseQuery(string(body))
		require.NoError(t, err)
		return jsonResponse(http.StatusOK, `{"status":"SUCCESS","sessionkey":"sess","GatewayPageURL":"https://pay.test/redirect"}`), nil
	})

	session, err := client.InitSession(context.Background(), SessionRequest{
		TotalAmount: decimal.RequireFromString("350"),
		Currency:    "BDT",
		TranID:      "abc123",
		SuccessURL:  "http://srv/success/abc123",
		FailURL:     "http://srv/fail",
		CancelURL:   "http://srv/cancel",
		ProductName: "Book",
		Customer:    Customer{Name: "Rahim", Email: "r@example.com"},
		Values:      [4]string{"ref001_A"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://gateway.test/gwprocess/v4/api.php", capturedURL)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "store", captured.Get("store_id"))
	assert.Equal(t, "secret", captured.Get("store_passwd"))
	assert.Equal(t, "350.00", captured.Get("total_amount"))
	assert.Equal(t, "abc123", captured.Get("tran_id"))
	assert.Equal(t, "Rahim", captured.Get("cus_name"))
	assert.Equal(t, "ref001_A", captured.Get("value_a"))
	assert.False(t, captured.Has("value_b"))
	assert.Equal(t, "https://pay.test/redirect", session.GatewayPageURL)
}

func TestInitSession_RejectedSessionIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"FAILED","failedreason":"Store Credential Error"}`), nil
	})

	session, err := client.InitSession(context.Background(), SessionRequest{TranID: "abc"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.NotNil(t, session)
	assert.Equal(t, "Store Credential Error", session.FailedReason)
}

func TestInitSession_HTTPErrorIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "upstream down"), nil
	})

	_, err := client.InitSession(context.Background(), SessionRequest{TranID: "abc"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestInitSession_RequiresTranID(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("gateway should not be called")
		return nil, nil
	})
	_, err := client.InitSession(context.Background(), SessionRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestValidateTransaction(t *testing.T) {
	var query url.Values
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/validator/api/validationserverAPI.php", req.URL.Path)
		query = req.URL.Query()
		return jsonResponse(http.StatusOK, `{"status":"VALID","tran_id":"abc","val_id":"v1","amount":"350.00"}`), nil
	})

	validation, err := client.ValidateTransaction(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", query.Get("val_id"))
	assert.Equal(t, "store", query.Get("store_id"))
	assert.Equal(t, "json", query.Get("format"))
	assert.True(t, validation.IsValid())
	assert.Equal(t, "abc", validation.TranID)
}

func TestQueryTransaction(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/validator/api/merchantTransIDvalidationAPI.php", req.URL.Path)
		assert.Equal(t, "abc", req.URL.Query().Get("tran_id"))
		return jsonResponse(http.StatusOK, `{"APIConnect":"DONE","no_of_trans_found":2,"element":[{"status":"FAILED","val_id":"v0"},{"status":"VALIDATED","val_id":"v1","tran_id":"abc"}]}`), nil
	})

	result, err := client.QueryTransaction(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Found)

	settled, ok := result.Settled()
	require.True(t, ok)
	assert.Equal(t, "v1", settled.ValID)
}

func TestQueryTransaction_NoSettledElement(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"APIConnect":"DONE","no_of_trans_found":0,"element":[]}`), nil
	})

	result, err := client.QueryTransaction(context.Background(), "abc")
	require.NoError(t, err)
	_, ok := result.Settled()
	assert.False(t, ok)
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) { return nil, nil })

	form := url.Values{}
	form.Set("tran_id", "abc")
	form.Set("val_id", "v1")
	form.Set("status", "VALID")
	form.Set("verify_key", "tran_id,val_id,status")

	payload := "status=VALID&store_passwd=" + md5Hex("secret") + "&tran_id=abc&val_id=v1"
	form.Set("verify_sign", md5Hex(payload))
	assert.True(t, client.VerifySignature(form))

	form.Set("status", "FAILED")
	assert.False(t, client.VerifySignature(form))

	form.Del("verify_sign")
	assert.False(t, client.VerifySignature(form))

	var nilClient *Client
	assert.False(t, nilClient.VerifySignature(form))
}
