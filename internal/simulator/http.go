package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/scoreboard/internal/domain/types"
)

// ErrUnexpectedStatus is returned when the server answers with a status the
// simulator does not expect for that call.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Event is the POST /events body.
type Event struct {
	EventID   string `json:"event_id"`
	MatchID   int    `json:"match_id"`
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`
	TS        string `json:"ts"`
}

// AckResponse represents the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type startMatchRequest struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// submitResult classifies one POST /events attempt.
type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultBackpressure
	resultFailed
)

// Client talks to the scoreboard API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// call performs a request, checks the status and decodes the body into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, body any, want int, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// StartMatch starts a match between home and away.
func (c *Client) StartMatch(ctx context.Context, home, away string) (types.MatchView, error) {
	var m types.MatchView
	err := c.call(ctx, http.MethodPost, "/matches", startMatchRequest{HomeTeam: home, AwayTeam: away}, http.StatusCreated, &m)
	return m, err
}

// FinishMatch finishes a match.
func (c *Client) FinishMatch(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, "/matches/"+strconv.Itoa(id), nil, http.StatusNoContent, nil)
}

// MatchExists reports whether GET /matches/{id} finds the match.
func (c *Client) MatchExists(ctx context.Context, id int) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/matches/"+strconv.Itoa(id), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: GET match %d returned %d", ErrUnexpectedStatus, id, resp.StatusCode)
	}
}

// Matches lists live matches.
func (c *Client) Matches(ctx context.Context) ([]types.MatchView, error) {
	var out []types.MatchView
	err := c.call(ctx, http.MethodGet, "/matches", nil, http.StatusOK, &out)
	return out, err
}

// Summary fetches the full ranked summary.
func (c *Client) Summary(ctx context.Context) ([]types.SummaryEntry, error) {
	var out []types.SummaryEntry
	err := c.call(ctx, http.MethodGet, "/summary", nil, http.StatusOK, &out)
	return out, err
}

// submitEvent posts one event.
func (c *Client) submitEvent(ctx context.Context, e Event) (submitResult, error) { //nolint:gocritic // hugeParam: events are small request bodies
	resp, err := c.do(ctx, http.MethodPost, "/events", e)
	if err != nil {
		return resultFailed, err
	}
	defer resp.Body.Close()

	var ack AckResponse
	_ = json.NewDecoder(resp.Body).Decode(&ack)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return resultAccepted, nil
	case http.StatusOK:
		return resultDuplicate, nil
	case http.StatusTooManyRequests:
		return resultBackpressure, nil
	default:
		return resultFailed, fmt.Errorf("%w: POST /events returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}
