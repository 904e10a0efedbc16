// This package provides the HTTP client used to reach remote entropy
// services. It can be told to use a specific IP version (IPv4 or IPv6)
// when making requests.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// IPVersion is used to specify which IP version to use
type IPVersion int

const (
	// IPAny allows connections over either IPv4 or IPv6
	IPAny IPVersion = iota
	// IPv4Only forces connections over IPv4 only
	IPv4Only
	// IPv6Only forces connections over IPv6 only
	IPv6Only
)

// ParseIPVersion accepts "any", "4" or "6" (as used on the command line).
func ParseIPVersion(s string) (IPVersion, error) {
	switch s {
	case "", "any":
		return IPAny, nil
	case "4", "v4", "ipv4":
		return IPv4Only, nil
	case "6", "v6", "ipv6":
		return IPv6Only, nil
	}
	return IPAny, fmt.Errorf("invalid ip version %q", s)
}

func (v IPVersion) network(network string) string {
	switch v {
	case IPv4Only:
		return "tcp4"
	case IPv6Only:
		return "tcp6"
	}
	return network
}

// Options configure New. The zero value gives a client with no overall
// request timeout.
type Options struct {
	// Timeout bounds each request including reading the body; zero
	// means no timeout.
	Timeout time.Duration
	// IPVersion restricts which address family connections use.
	IPVersion IPVersion
}

// New creates an HTTP client that respects the IP version option and
// records otel spans for each request.
func New(opts Options) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, opts.IPVersion.network(network), addr)
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   opts.Timeout,
	}
}
