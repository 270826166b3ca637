// Package http builds pooled HTTP transports.
package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
)

// ClientConfig configures NewTransport. Zero fields take the package
// defaults.
type ClientConfig struct {
	TLSConfig           *tls.Config
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers after
	// the request is written.
	ResponseHeaderTimeout time.Duration
	TLSHandshakeTimeout   time.Duration
	DisableKeepAlives     bool
}

// NewTransport returns a keep-alive transport sized for a single busy
// upstream.
func NewTransport(cfg *ClientConfig) *http.Transport {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultDialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          orInt(cfg.MaxIdleConns, DefaultMaxIdleConns),
		MaxIdleConnsPerHost:   orInt(cfg.MaxIdleConnsPerHost, DefaultMaxIdleConnsPerHost),
		IdleConnTimeout:       orDuration(cfg.IdleConnTimeout, DefaultIdleConnTimeout),
		ResponseHeaderTimeout: orDuration(cfg.ResponseHeaderTimeout, DefaultResponseHeaderTimeout),
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		TLSHandshakeTimeout:   orDuration(cfg.TLSHandshakeTimeout, DefaultTLSHandshakeTimeout),
		DisableKeepAlives:     cfg.DisableKeepAlives,
	}
	if cfg.TLSConfig != nil {
		transport.TLSClientConfig = cfg.TLSConfig
	}
	return transport
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orDuration(v, fallback time.Duration) time.Duration {
	if v == 0 {
		return fallback
	}
	return v
}
