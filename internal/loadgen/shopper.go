package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Journey steps, in order
const (
	StepProducts = "products"
	StepCartAdd  = "cart_add"
	StepQuote    = "quote"
	StepCheckout = "checkout"
)

// ErrNoProducts is returned when the listing has nothing in stock
var ErrNoProducts = errors.New("no product in stock")

// StatusError is a non-2xx answer from the storefront
type StatusError struct {
	Step   string
	Status int
	Code   string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: HTTP %d (%s)", e.Step, e.Status, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Step, e.Status)
}

// Recorder receives the latency of every step
type Recorder interface {
	Record(step string, d time.Duration, err error)
}

// Shopper is one browser session: it keeps the session cookie between calls
type Shopper struct {
	baseURL string
	client  *http.Client
	rec     Recorder
}

// NewShopper creates a shopper with an empty cookie jar
func NewShopper(baseURL string, timeout time.Duration, rec Recorder) (*Shopper, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Shopper{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		client:  &http.Client{Jar: jar, Timeout: timeout},
		rec:     rec,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type productItem struct {
	ID      string `json:"id"`
	InStock bool   `json:"in_stock"`
}

type placedOrder struct {
	OrderNumber string `json:"order_number"`
	Total       int64  `json:"total"`
}

// Journey browses, fills the cart, asks for a quote and checks out.
// It returns the new order number.
func (s *Shopper) Journey(ctx context.Context, plan Plan) (string, error) {
	var products []productItem
	if err := s.call(ctx, StepProducts, http.MethodGet, "/products?page_size=50", nil, nil, &products); err != nil {
		return "", err
	}
	inStock := products[:0]
	for _, p := range products {
		if p.InStock {
			inStock = append(inStock, p)
		}
	}
	if len(inStock) == 0 {
		return "", ErrNoProducts
	}
	product := inStock[plan.Pick%len(inStock)]

	add := map[string]any{"product_id": product.ID, "quantity": plan.Quantity}
	if err := s.call(ctx, StepCartAdd, http.MethodPost, "/cart/items", add, nil, nil); err != nil {
		return "", err
	}

	quotePath := "/shipping/quote?region=" + url.QueryEscape(plan.Customer.Region)
	if err := s.call(ctx, StepQuote, http.MethodGet, quotePath, nil, nil, nil); err != nil {
		return "", err
	}

	form := map[string]string{
		"name":    plan.Customer.Name,
		"phone":   plan.Customer.Phone,
		"region":  plan.Customer.Region,
		"address": plan.Customer.Address,
		"notes":   plan.Customer.Notes,
	}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	var order placedOrder
	if err := s.call(ctx, StepCheckout, http.MethodPost, "/checkout", form, headers, &order); err != nil {
		return "", err
	}
	return order.OrderNumber, nil
}

func (s *Shopper) call(ctx context.Context, step, method, path string, body any, headers map[string]string, out any) (err error) {
	start := time.Now()
	defer func() {
		if s.rec != nil {
			s.rec.Record(step, time.Since(start), err)
		}
	}()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{Step: step, Status: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			statusErr.Code = env.Error.Code
		}
		return statusErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: decoding response: %w", step, decodeErr)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decoding data: %w", step, err)
		}
	}
	return nil
}
