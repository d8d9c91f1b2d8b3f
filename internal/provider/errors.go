package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind classifies a provider failure
type Kind int

const (
	// KindInvalidArgument means the call was rejected before any I/O
	KindInvalidArgument Kind = iota + 1
	// KindTransport covers network failures, timeouts and aborted waits
	KindTransport
	// KindProvider is a non-2xx answer or an unreadable body
	KindProvider
	// KindRateLimited is an HTTP 429. It is also a provider error.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTransport:
		return "transport"
	case KindProvider:
		return "provider"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. ErrProvider also matches rate limited errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTransport       = errors.New("transport error")
	ErrProvider        = errors.New("provider error")
	ErrRateLimited     = errors.New("rate limited")
)

// maxPayload bounds how much of a provider error body is kept
const maxPayload = 512

// Error is returned by every failing Client call
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Payload    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("provider ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch e.Kind {
	case KindProvider, KindRateLimited:
		fmt.Fprintf(&b, "status %d", e.StatusCode)
		if e.Payload != "" {
			b.WriteString(": ")
			b.WriteString(e.Payload)
		}
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProvider:
		return e.Kind == KindProvider || e.Kind == KindRateLimited
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	}
	return false
}

// AsError unwraps err looking for a *Error
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func invalidArgument(op, msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: errors.New(msg)}
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func statusError(op string, resp *http.Response, body []byte) *Error {
	e := &Error{
		Kind:       KindProvider,
		Op:         op,
		StatusCode: resp.StatusCode,
		Payload:    truncate(strings.TrimSpace(string(body)), maxPayload),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		e.Kind = KindRateLimited
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return e
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
