// Package calendarsync работает с внешним календарём инструктора через
// REST API в духе Google Calendar. Локального состояния нет.
package calendarsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Leganyst/lesson-booking/internal/model"
)

const defaultTimeout = 10 * time.Second

// ErrNotConnected: в подключении нет календаря или токена.
var ErrNotConnected = errors.New("calendar connection is incomplete")

// Error оборачивает любой неудачный вызов провайдера. Для транспортных
// ошибок и таймаутов StatusCode равен нулю.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout: вызов не уложился во время. Провайдер мог его всё же применить.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient создаёт клиента; timeout ограничивает каждый вызов.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateEvent(ctx context.Context, conn model.CalendarConnection, ev Event) (string, error) {
	const op = "create_event"

	var resp eventResponse
	if err := c.do(ctx, op, conn, http.MethodPost, c.eventsURL(conn), toBody(ev), &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &Error{Op: op, Err: errors.New("provider returned empty event id")}
	}
	return resp.ID, nil
}

func (c *Client) UpdateEvent(ctx context.Context, conn model.CalendarConnection, eventID string, ev Event) error {
	return c.do(ctx, "update_event", conn, http.MethodPatch, c.eventURL(conn, eventID), toBody(ev), nil)
}

// DeleteEvent считает отсутствующее событие (404/410) удалённым.
func (c *Client) DeleteEvent(ctx context.Context, conn model.CalendarConnection, eventID string) error {
	err := c.do(ctx, "delete_event", conn, http.MethodDelete, c.eventURL(conn, eventID), nil, nil)

	var cerr *Error
	if errors.As(err, &cerr) &&
		(cerr.StatusCode == http.StatusNotFound || cerr.StatusCode == http.StatusGone) {
		return nil
	}
	return err
}

func (c *Client) eventsURL(conn model.CalendarConnection) string {
	return fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(conn.CalendarID))
}

func (c *Client) eventURL(conn model.CalendarConnection, eventID string) string {
	return c.eventsURL(conn) + "/" + url.PathEscape(eventID)
}

func (c *Client) do(
	ctx context.Context,
	op string,
	conn model.CalendarConnection,
	method, target string,
	body any,
	out any,
) error {
	if conn.CalendarID == "" || conn.AccessToken == "" {
		return &Error{Op: op, Err: ErrNotConnected}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("provider returned %s: %s", resp.Status, strings.TrimSpace(string(msg))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func toBody(ev Event) eventBody {
	return eventBody{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.TimeZone},
		End:         eventTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.TimeZone},
	}
}
