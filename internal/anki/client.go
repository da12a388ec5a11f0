// Package anki talks to a running Anki instance through the AnkiConnect
// add-on's JSON API.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// APIVersion is the AnkiConnect protocol version sent with every request.
const APIVersion = 6

// DefaultEndpoint is where AnkiConnect listens out of the box.
const DefaultEndpoint = "http://127.0.0.1:8765"

// Config configures a Client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration // per request; 0 means 5s
	HTTPClient *http.Client
	Logger     *zap.Logger

	// FailureThreshold consecutive connection failures open the breaker
	// for Cooldown. Zero values select 3 failures and 30s.
	FailureThreshold uint32
	Cooldown         time.Duration
}

// Client is an AnkiConnect client. It is safe for concurrent use.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	log      *zap.Logger
}

type request struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// NewClient creates a client for cfg.Endpoint.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}

	log := cfg.Logger.With(zap.String("component", "anki"))
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ankiconnect",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Anki answering with an error still proves it is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrConnection)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		breaker:  breaker,
		log:      log,
	}
}

// Endpoint returns the AnkiConnect URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// invoke performs one AnkiConnect action and decodes its result into out
// (which may be nil). Each call is attempted once.
func (c *Client) invoke(ctx context.Context, action string, params, out interface{}) error {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, action, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.NewConnectionError(action, err)
		}
		return err
	}

	raw := res.(json.RawMessage)
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewConnectionError(action, fmt.Errorf("failed to decode result: %w", err))
	}
	return nil
}

func (c *Client) post(ctx context.Context, action string, params interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(request{Action: action, Version: APIVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewConnectionError(action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewConnectionError(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, domain.NewConnectionError(action, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, domain.NewConnectionError(action, fmt.Errorf("failed to decode response: %w", err))
	}
	c.log.Debug("ankiconnect call",
		zap.String("action", action),
		zap.Duration("took", time.Since(start)))

	if r.Error != nil {
		return nil, domain.NewValidationError(action, *r.Error)
	}
	return r.Result, nil
}

// Version returns the AnkiConnect protocol version. It doubles as a
// reachability check.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DeckNames lists all decks.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelNames lists all note types.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelFieldNames lists the fields of note type model in order.
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	var names []string
	params := map[string]string{"modelName": model}
	if err := c.invoke(ctx, "modelFieldNames", params, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GuiBrowse opens Anki's card browser on query.
func (c *Client) GuiBrowse(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "guiBrowse", map[string]string{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
