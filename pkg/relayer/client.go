package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/sandbox/pkg/build"
)

var log = logging.Logger("relayer")

// Client talks to the relayer REST API.
type Client interface {
	ListRelayers(ctx context.Context) (ListRelayersResponse, error)
	GetBalance(ctx context.Context, relayerID string) (BalanceResponse, error)
	SendTransaction(ctx context.Context, relayerID string, req TransactionRequest) (TransactionResponse, error)
	GetTransaction(ctx context.Context, relayerID string, txID string) (TransactionResponse, error)
}

const apiRoutePath = "/api/v1"
const relayersPath = "/relayers"
const balancePath = "/balance"
const transactionsPath = "/transactions"

type ErrFailedResponse struct {
	StatusCode int
	Body       string
}

func errFromResponse(res *http.Response) ErrFailedResponse {
	err := ErrFailedResponse{StatusCode: res.StatusCode}

	message, merr := io.ReadAll(res.Body)
	if merr != nil {
		err.Body = merr.Error()
	} else {
		err.Body = string(message)
	}
	return err
}

func (e ErrFailedResponse) Error() string {
	return fmt.Sprintf("http request failed, status: %d %s, message: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type HTTPClient struct {
	apiKey   string
	endpoint *url.URL
	client   *http.Client
}

var _ Client = (*HTTPClient)(nil)

func New(client *http.Client, endpoint *url.URL, apiKey string) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   client,
	}
}

func (c *HTTPClient) ListRelayers(ctx context.Context) (ListRelayersResponse, error) {
	url := c.endpoint.JoinPath(apiRoutePath, relayersPath).String()
	var res ListRelayersResponse
	err := c.getJsonResponse(ctx, url, &res)
	return res, err
}

func (c *HTTPClient) GetBalance(ctx context.Context, relayerID string) (BalanceResponse, error) {
	url := c.endpoint.JoinPath(apiRoutePath, relayersPath, relayerID, balancePath).String()
	var res BalanceResponse
	err := c.getJsonResponse(ctx, url, &res)
	return res, err
}

func (c *HTTPClient) SendTransaction(ctx context.Context, relayerID string, req TransactionRequest) (TransactionResponse, error) {
	url := c.endpoint.JoinPath(apiRoutePath, relayersPath, relayerID, transactionsPath).String()
	log.Debugw("sending relayer transaction", "relayer", relayerID, "to", req.To, "value", req.Value, "speed", req.Speed)
	res, err := c.postJson(ctx, url, req)
	if err != nil {
		return TransactionResponse{}, err
	}
	defer res.Body.Close()
	var out TransactionResponse
	if err := decodeResponse(res, &out); err != nil {
		return TransactionResponse{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetTransaction(ctx context.Context, relayerID string, txID string) (TransactionResponse, error) {
	url := c.endpoint.JoinPath(apiRoutePath, relayersPath, relayerID, transactionsPath, txID).String()
	var res TransactionResponse
	err := c.getJsonResponse(ctx, url, &res)
	return res, err
}

func (c *HTTPClient) sendRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("generating http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", build.UserAgent())
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to relayer: %w", err)
	}
	return res, nil
}

func (c *HTTPClient) postJson(ctx context.Context, url string, params interface{}) (*http.Response, error) {
	var body io.Reader
	if params != nil {
		asBytes, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding request parameters: %w", err)
		}
		body = bytes.NewReader(asBytes)
	}
	return c.sendRequest(ctx, http.MethodPost, url, body)
}

func (c *HTTPClient) getJsonResponse(ctx context.Context, url string, target interface{}) error {
	res, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return decodeResponse(res, target)
}

func decodeResponse(res *http.Response, target interface{}) error {
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errFromResponse(res)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	err = json.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("unmarshalling JSON response to target: %w", err)
	}
	return nil
}
