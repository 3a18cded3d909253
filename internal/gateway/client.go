package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/config"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/types"
)

// Client talks to the remote gateway over HTTP. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, logg *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logg:    logg,
	}
}

func (c *Client) FetchCart(ctx context.Context, identity auth.Identity) (CartSnapshot, error) {
	var snap CartSnapshot
	if err := c.do(ctx, identity, http.MethodGet, "/cart", nil, &snap); err != nil {
		return CartSnapshot{}, err
	}
	if snap.Items == nil {
		snap.Items = []CartLine{}
	}
	return snap, nil
}

func (c *Client) AddCartItem(ctx context.Context, identity auth.Identity, shoeID int64, quantity int) error {
	body := map[string]any{"shoe_id": shoeID, "quantity": quantity}
	return c.do(ctx, identity, http.MethodPost, "/cart", body, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, identity auth.Identity, lineID int64, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, identity, http.MethodPut, "/cart/"+strconv.FormatInt(lineID, 10), body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, identity auth.Identity, lineID int64) error {
	return c.do(ctx, identity, http.MethodDelete, "/cart/"+strconv.FormatInt(lineID, 10), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, identity auth.Identity) error {
	return c.do(ctx, identity, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) CreateOrder(ctx context.Context, identity auth.Identity, req CreateOrderRequest) (Order, error) {
	var order Order
	if err := c.do(ctx, identity, http.MethodPost, "/orders", req, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) ListOrders(ctx context.Context, identity auth.Identity) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, identity, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (c *Client) ListAllOrders(ctx context.Context, identity auth.Identity) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, identity, http.MethodGet, "/orders/all", nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, identity auth.Identity, orderID int64) (Order, error) {
	var order Order
	if err := c.do(ctx, identity, http.MethodGet, "/orders/"+strconv.FormatInt(orderID, 10), nil, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, identity auth.Identity, orderID int64, status enums.OrderStatus) (Order, error) {
	path := fmt.Sprintf("/orders/%d/status?status=%s", orderID, url.QueryEscape(status.String()))
	var order Order
	if err := c.do(ctx, identity, http.MethodPut, path, nil, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) UpdateTracking(ctx context.Context, identity auth.Identity, orderID int64, trackingNumber string) (Order, error) {
	path := fmt.Sprintf("/orders/%d/tracking?trackingNumber=%s", orderID, url.QueryEscape(trackingNumber))
	var order Order
	if err := c.do(ctx, identity, http.MethodPut, path, nil, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) FetchStatistics(ctx context.Context, identity auth.Identity, timeframe enums.Timeframe) (Statistics, error) {
	path := "/orders/statistics?timeframe=" + url.QueryEscape(timeframe.String())
	var stats Statistics
	if err := c.do(ctx, identity, http.MethodGet, path, nil, &stats); err != nil {
		return Statistics{}, err
	}
	if stats.OrdersByDate == nil {
		stats.OrdersByDate = map[string]int{}
	}
	return stats, nil
}

// do performs a single request/response cycle. Success bodies use the
// {"data": ...} envelope; failures carry {"error": {...}} which is
// mapped onto the local error taxonomy.
func (c *Client) do(ctx context.Context, identity auth.Identity, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "building gateway request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity.Token != "" {
		req.Header.Set("Authorization", "Bearer "+identity.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeTransport, err, "gateway unreachable")
	}
	defer resp.Body.Close()

	if c.logg != nil {
		c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
			"gateway_method": method,
			"gateway_path":   path,
			"gateway_status": resp.StatusCode,
		}), "gateway call")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return errors.Wrap(errors.CodeTransport, err, "decoding gateway response")
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrap(errors.CodeTransport, err, "decoding gateway payload")
		}
		return nil
	}

	return c.mapFailure(resp)
}

// mapFailure converts a non-2xx response into a coded error. A code the
// taxonomy recognizes is kept verbatim; otherwise the HTTP status class
// decides.
func (c *Client) mapFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		code := errors.Code(envelope.Error.Code)
		if _, known := knownCodes[code]; known {
			typed := errors.New(code, envelope.Error.Message)
			if envelope.Error.Details != nil {
				typed = typed.WithDetails(envelope.Error.Details)
			}
			return typed
		}
	}

	code := codeForStatus(resp.StatusCode)
	return errors.New(code, fmt.Sprintf("gateway returned %d", resp.StatusCode))
}

var knownCodes = map[errors.Code]struct{}{
	errors.CodeValidation:        {},
	errors.CodeAuthRequired:      {},
	errors.CodeForbidden:         {},
	errors.CodeNotFound:          {},
	errors.CodeEmptyCart:         {},
	errors.CodePayment:           {},
	errors.CodeIllegalTransition: {},
	errors.CodeTransport:         {},
	errors.CodeInternal:          {},
}

func codeForStatus(status int) errors.Code {
	switch {
	case status == http.StatusBadRequest:
		return errors.CodeValidation
	case status == http.StatusUnauthorized:
		return errors.CodeAuthRequired
	case status == http.StatusPaymentRequired:
		return errors.CodePayment
	case status == http.StatusForbidden:
		return errors.CodeForbidden
	case status == http.StatusNotFound:
		return errors.CodeNotFound
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return errors.CodeIllegalTransition
	case status >= 500:
		return errors.CodeTransport
	default:
		return errors.CodeInternal
	}
}
