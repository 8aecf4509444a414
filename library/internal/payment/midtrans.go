package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/circuit_breaker"
)

const (
	sandboxSnapURL    = "https://app.sandbox.midtrans.com"
	sandboxAPIURL     = "https://api.sandbox.midtrans.com"
	productionSnapURL = "https://app.midtrans.com"
	productionAPIURL  = "https://api.midtrans.com"
)

type Config struct {
	ServerKey  string        `envconfig:"MIDTRANS_SERVER_KEY" json:"-"`
	Env        string        `envconfig:"MIDTRANS_ENV" default:"sandbox"`
	SnapURL    string        `envconfig:"MIDTRANS_SNAP_URL"`
	APIURL     string        `envconfig:"MIDTRANS_API_URL"`
	Timeout    time.Duration `envconfig:"MIDTRANS_TIMEOUT" default:"15s"`
	FinishURL  string        `envconfig:"MIDTRANS_FINISH_URL"`
	BreakerWin int           `envconfig:"MIDTRANS_BREAKER_WINDOW" default:"20"`
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func (c Config) snapURL() string {
	switch {
	case c.SnapURL != "":
		return strings.TrimRight(c.SnapURL, "/")
	case c.Production():
		return productionSnapURL
	}
	return sandboxSnapURL
}

func (c Config) apiURL() string {
	switch {
	case c.APIURL != "":
		return strings.TrimRight(c.APIURL, "/")
	case c.Production():
		return productionAPIURL
	}
	return sandboxAPIURL
}

var ErrGateway = errors.New("payment gateway error")

// Client talks to the Midtrans Snap and Core status APIs.
type Client struct {
	cfg    Config
	client *http.Client
	cb     circuit_breaker.CircuitBreaker
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BreakerWin < 1 {
		cfg.BreakerWin = 20
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     circuit_breaker.New(cfg.BreakerWin, 10*time.Second, 0.5, 2),
		log:    log.Named("midtrans"),
	}
}

func (c *Client) CB() circuit_breaker.CircuitBreaker {
	return c.cb
}

type snapRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	CustomerDetails    customerDetails    `json:"customer_details"`
	ItemDetails        []itemDetails      `json:"item_details,omitempty"`
	Callbacks          *callbacks         `json:"callbacks,omitempty"`
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type customerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type itemDetails struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type callbacks struct {
	Finish string `json:"finish"`
}

// item names are capped by the gateway, in characters
const maxItemName = 50

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}

func newSnapRequest(req model.TransactionRequest, finishURL string) snapRequest {
	r := snapRequest{
		TransactionDetails: transactionDetails{OrderID: req.OrderID, GrossAmount: req.Amount},
		CustomerDetails: customerDetails{
			FirstName: req.Customer.Name,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
	}
	for _, it := range req.Items {
		r.ItemDetails = append(r.ItemDetails, itemDetails{ID: it.ID, Price: it.Price, Quantity: it.Quantity, Name: truncate(it.Name, maxItemName)})
	}
	if finishURL != "" {
		r.Callbacks = &callbacks{Finish: finishURL}
	}
	return r
}

func (c *Client) CreateTransaction(ctx context.Context, req model.TransactionRequest) (model.Transaction, error) {
	body, err := json.Marshal(newSnapRequest(req, c.cfg.FinishURL))
	if err != nil {
		return model.Transaction{}, errors.Wrap(err, "marshal snap request")
	}
	var data []byte
	err = c.cb.Call(func() error {
		var err error
		data, err = c.do(ctx, http.MethodPost, c.cfg.snapURL()+"/snap/v1/transactions", body, http.StatusCreated, http.StatusOK)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	res := gjson.GetManyBytes(data, "token", "redirect_url")
	if res[0].String() == "" {
		return model.Transaction{}, errors.Wrapf(ErrGateway, "snap response without token: %s", data)
	}
	return model.Transaction{Token: res[0].String(), RedirectURL: res[1].String()}, nil
}

func (c *Client) TransactionStatus(ctx context.Context, orderID string) (model.TransactionStatus, error) {
	var data []byte
	err := c.cb.Call(func() error {
		var err error
		data, err = c.do(ctx, http.MethodGet, fmt.Sprintf("%s/v2/%s/status", c.cfg.apiURL(), url.PathEscape(orderID)), nil, http.StatusOK, http.StatusNotFound)
		return err
	})
	if err != nil {
		return model.TransactionStatus{}, err
	}
	return parseStatus(data)
}

// parseStatus reads a status body. An unknown order carries status_code 404
// and no transaction_status.
func parseStatus(data []byte) (model.TransactionStatus, error) {
	if !gjson.ValidBytes(data) {
		return model.TransactionStatus{}, errors.Wrap(ErrGateway, "invalid status response")
	}
	res := gjson.GetManyBytes(data,
		"order_id", "transaction_status", "fraud_status", "status_code", "gross_amount", "payment_type", "status_message")
	st := model.TransactionStatus{
		OrderID:           res[0].String(),
		TransactionStatus: res[1].String(),
		FraudStatus:       res[2].String(),
		StatusCode:        res[3].String(),
		GrossAmount:       res[4].String(),
		PaymentType:       res[5].String(),
	}
	if st.TransactionStatus == "" {
		return model.TransactionStatus{}, errors.Wrapf(ErrGateway, "status %s: %s", st.StatusCode, res[6].String())
	}
	return st, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, okCodes ...int) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.SetBasicAuth(c.cfg.ServerKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "midtrans request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read midtrans response")
	}
	for _, code := range okCodes {
		if resp.StatusCode == code {
			return data, nil
		}
	}
	msg := gjson.GetBytes(data, "error_messages").String()
	if msg == "" {
		msg = gjson.GetBytes(data, "status_message").String()
	}
	c.log.Warn("unexpected response", zap.String("method", method), zap.Int("status", resp.StatusCode), zap.String("message", msg))
	return nil, errors.Wrapf(ErrGateway, "%s %d: %s", method, resp.StatusCode, msg)
}
