// Package stream implements the client side of the query streaming
// protocol.
//
// A [Session] drives at most one in-flight exchange with the backend: a
// single POST whose response body is a text/event-stream of framed
// events. Frames carry partial answer text (`chunk`), structured
// metadata including the optional raw graph snapshot (`metadata`), and
// a terminal `done` or `error`.
//
// Frames are read and dispatched strictly in network arrival order by
// one goroutine per exchange, so callbacks never interleave or run
// concurrently within an exchange. Starting a new exchange cancels any
// in-flight one synchronously before the new exchange's state exists;
// a cancelled exchange exits silently and never fires its terminal
// callbacks, so a slow stale stream can never overwrite newer state.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/graphlens/graphlens/pkg/errors"
	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/httputil"
	"github.com/graphlens/graphlens/pkg/observability"
)

// Request is the body of a streaming query.
type Request struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// Metadata is the structured result carried by a metadata frame.
// Graph is the optional raw snapshot; Raw retains the full payload for
// fields the client doesn't model.
type Metadata struct {
	Graph *graph.Snapshot `json:"graph,omitempty"`
	Raw   json.RawMessage `json:"-"`
}

// Callbacks receive the events of one exchange. Nil members are
// skipped. At most one of OnDone/OnError fires per exchange, and never
// after a newer exchange has started.
type Callbacks struct {
	// OnMetadata fires for each parseable metadata frame.
	OnMetadata func(meta Metadata)
	// OnChunk fires per chunk frame with the fragment and the new
	// accumulated total.
	OnChunk func(fragment, accumulated string)
	// OnDone fires on successful termination with the final content.
	OnDone func(final string)
	// OnError fires on transport failure or an error frame.
	// Cancellation is not a failure and never reaches OnError.
	OnError func(err error)
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the HTTP client used for exchanges.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithLogger sets the logger for protocol warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session manages one cancellable streaming exchange at a time against
// a fixed endpoint URL.
type Session struct {
	url    string
	client *http.Client
	logger *log.Logger

	mu  sync.Mutex
	cur *exchange
}

// exchange is the per-Start state: its own context, callbacks, and
// accumulated content. Callbacks are bound to the exchange, not the
// session.
type exchange struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cb      Callbacks
	content strings.Builder
}

// NewSession creates a session for the given streaming endpoint URL.
func NewSession(url string, opts ...Option) *Session {
	s := &Session{
		url:    url,
		client: http.DefaultClient,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new exchange. If a previous exchange is in flight it
// is cancelled synchronously first, before any state for the new
// exchange is initialized. The read loop runs on its own goroutine;
// Start returns immediately.
func (s *Session) Start(ctx context.Context, req Request, cb Callbacks) {
	exCtx, cancel := context.WithCancel(ctx)
	ex := &exchange{ctx: exCtx, cancel: cancel, cb: cb}

	s.mu.Lock()
	if s.cur != nil {
		s.cur.cancel()
	}
	s.cur = ex
	s.mu.Unlock()

	go s.run(ex, req)
}

// Abort cancels the in-flight exchange, if any. The exchange's read
// loop observes the cancellation and exits without invoking the error
// callback; cancellation is not a failure. IsStreaming reports false
// as soon as Abort returns.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.cancel()
		s.cur = nil
	}
}

// IsStreaming reports whether an exchange is in flight.
func (s *Session) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur != nil
}

// run drives one exchange to completion.
func (s *Session) run(ex *exchange, req Request) {
	start := time.Now()
	observability.Stream().OnExchangeStart(ex.ctx, s.url)

	resp, err := s.open(ex.ctx, req)
	if err != nil {
		s.finish(ex, start, "", err)
		return
	}
	defer resp.Body.Close()

	dec := newFrameDecoder(resp.Body)
	for {
		frame, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Stream closed without a terminal frame; the
				// accumulated content is the final answer.
				s.finish(ex, start, ex.content.String(), nil)
			} else {
				s.finish(ex, start, "", apperrors.Wrap(apperrors.ErrCodeNetwork, err, "stream read failed"))
			}
			return
		}
		if done := s.dispatch(ex, start, frame); done {
			return
		}
	}
}

// open performs the POST and validates the response status. The
// initial connect is retried with backoff for transient network
// failures; once the body is open there are no retries.
func (s *Session) open(ctx context.Context, req Request) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err, "encode request")
	}

	var resp *http.Response
	err = httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err = s.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "open stream to %s", s.url)
	}

	// A non-success status before any body is read is fatal.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, apperrors.New(apperrors.ErrCodeStreamStatus,
			"unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// dispatch processes one frame in arrival order. Returns true when the
// frame was terminal.
func (s *Session) dispatch(ex *exchange, start time.Time, frame Frame) bool {
	observability.Stream().OnFrame(ex.ctx, frame.Event)

	switch frame.Event {
	case FrameMetadata:
		var meta Metadata
		if err := json.Unmarshal([]byte(frame.Data), &meta); err != nil {
			// Protocol parse errors are recovered locally; the
			// exchange continues.
			s.logger.Warn("dropping malformed metadata frame", "err", err)
			return false
		}
		meta.Raw = json.RawMessage(frame.Data)
		if s.alive(ex) && ex.cb.OnMetadata != nil {
			ex.cb.OnMetadata(meta)
		}
		return false

	case FrameChunk:
		ex.content.WriteString(frame.Data)
		if s.alive(ex) && ex.cb.OnChunk != nil {
			ex.cb.OnChunk(frame.Data, ex.content.String())
		}
		return false

	case FrameDone:
		var payload struct {
			Success      bool   `json:"success"`
			FullResponse string `json:"full_response"`
		}
		final := ex.content.String()
		if err := json.Unmarshal([]byte(frame.Data), &payload); err != nil {
			s.logger.Warn("unparsable done payload, using accumulated content", "err", err)
		} else if payload.FullResponse != "" {
			final = payload.FullResponse
		}
		s.finish(ex, start, final, nil)
		return true

	case FrameError:
		var payload struct {
			Message string `json:"message"`
		}
		msg := frame.Data
		if err := json.Unmarshal([]byte(frame.Data), &payload); err == nil && payload.Message != "" {
			msg = payload.Message
		}
		s.finish(ex, start, "", apperrors.New(apperrors.ErrCodeStreamProtocol, "%s", msg))
		return true

	default:
		s.logger.Debug("ignoring unknown frame", "event", frame.Event)
		return false
	}
}

// alive reports whether the exchange is still the session's current
// one and not cancelled. Callbacks only fire for live exchanges.
func (s *Session) alive(ex *exchange) bool {
	if ex.ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur == ex
}

// finish clears the in-flight marker and fires the terminal callback,
// unless the exchange was cancelled or superseded, in which case it
// exits silently.
func (s *Session) finish(ex *exchange, start time.Time, final string, err error) {
	cancelled := ex.ctx.Err() != nil
	ex.cancel()

	s.mu.Lock()
	current := s.cur == ex
	if current {
		s.cur = nil
	}
	s.mu.Unlock()

	// Cancelled or superseded: silent, non-error termination.
	if !current || cancelled || errors.Is(err, context.Canceled) {
		return
	}

	observability.Stream().OnExchangeComplete(ex.ctx, time.Since(start), err)

	if err != nil {
		s.logger.Debug("exchange failed", "err", err)
		if ex.cb.OnError != nil {
			ex.cb.OnError(err)
		}
		return
	}
	if ex.cb.OnDone != nil {
		ex.cb.OnDone(final)
	}
}
