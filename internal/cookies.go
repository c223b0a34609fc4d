package internal

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cookie is a single parsed request cookie. Reading an unset name
// yields a Cookie with an empty value, never an error.
type Cookie struct {
	Value string
}

// Jar provides lazy request-cookie parsing and deferred Set-Cookie
// emission. The Cookie header is parsed on first access only; written
// cookies are collected as individual Set-Cookie fragments and
// appended to the response headers when the response is built, so two
// distinct names always yield two separate entries.
type Jar struct {
	header    string
	parsed    map[string]string
	setQueue  []string
	parseOnce bool
}

func newJar(header string) *Jar {
	return &Jar{header: header}
}

// Get returns the cookie for name. Absent names return an empty-valued
// cookie.
func (j *Jar) Get(name string) Cookie {
	j.parse()
	return Cookie{Value: j.parsed[name]}
}

// parse splits the Cookie header on ';', trims each pair, splits on
// the first '=', and URL-decodes the value. Pairs without '=' are
// skipped. Runs at most once per request.
func (j *Jar) parse() {
	if j.parseOnce {
		return
	}
	j.parseOnce = true
	j.parsed = map[string]string{}

	for _, pair := range strings.Split(j.header, ";") {
		pair = strings.TrimSpace(pair)
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		j.parsed[name] = value
	}
}

// CookieOption configures a Set-Cookie fragment.
type CookieOption func(*cookieAttrs)

type cookieAttrs struct {
	expires  time.Time
	path     string
	sameSite string
	httpOnly bool
	secure   bool
}

// WithExpires sets the Expires attribute.
func WithExpires(t time.Time) CookieOption {
	return func(a *cookieAttrs) {
		a.expires = t
	}
}

// WithPath sets the Path attribute.
func WithPath(path string) CookieOption {
	return func(a *cookieAttrs) {
		a.path = path
	}
}

// WithHTTPOnly sets the HttpOnly attribute.
func WithHTTPOnly() CookieOption {
	return func(a *cookieAttrs) {
		a.httpOnly = true
	}
}

// WithSecure sets the Secure attribute.
func WithSecure() CookieOption {
	return func(a *cookieAttrs) {
		a.secure = true
	}
}

// WithSameSite sets the SameSite attribute ("Strict", "Lax", "None").
func WithSameSite(mode string) CookieOption {
	return func(a *cookieAttrs) {
		a.sameSite = mode
	}
}

// Set serializes one Set-Cookie fragment and queues it for emission.
// Each call produces its own header entry.
func (j *Jar) Set(name, value string, opts ...CookieOption) {
	var attrs cookieAttrs
	for _, opt := range opts {
		opt(&attrs)
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))

	if !attrs.expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(attrs.expires.UTC().Format(http.TimeFormat))
	}
	if attrs.path != "" {
		b.WriteString("; Path=")
		b.WriteString(attrs.path)
	}
	if attrs.httpOnly {
		b.WriteString("; HttpOnly")
	}
	if attrs.secure {
		b.WriteString("; Secure")
	}
	if attrs.sameSite != "" {
		b.WriteString("; SameSite=")
		b.WriteString(attrs.sameSite)
	}

	j.setQueue = append(j.setQueue, b.String())
}

// pending returns the queued Set-Cookie fragments in write order.
func (j *Jar) pending() []string {
	return j.setQueue
}
