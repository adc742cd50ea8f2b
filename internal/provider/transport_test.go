package provider

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewHTTPClient_Defaults tests a client without TLS or proxy material
func TestNewHTTPClient_Defaults(t *testing.T) {
	client, err := NewHTTPClient(ClientConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport == http.DefaultTransport {
		t.Error("expected a cloned transport, not the shared default")
	}
}

// TestNewHTTPClient_Proxy tests proxy configuration
func TestNewHTTPClient_Proxy(t *testing.T) {
	client, err := NewHTTPClient(ClientConfig{Proxy: "http://proxy.local:3128"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transport := client.Transport.(*http.Transport)
	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "ipinfo.io"}}
	proxyURL, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if proxyURL == nil || proxyURL.Host != "proxy.local:3128" {
		t.Errorf("expected proxy.local:3128, got %v", proxyURL)
	}
}

// TestNewHTTPClient_InvalidProxy tests proxy validation
func TestNewHTTPClient_InvalidProxy(t *testing.T) {
	if _, err := NewHTTPClient(ClientConfig{Proxy: "::not a url"}); err == nil {
		t.Error("expected error for invalid proxy URL")
	}
}

// TestNewHTTPClient_TLSErrors tests TLS material validation
func TestNewHTTPClient_TLSErrors(t *testing.T) {
	tmpDir := t.TempDir()
	garbage := filepath.Join(tmpDir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a certificate"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{"missing CA file", ClientConfig{CAFile: filepath.Join(tmpDir, "missing.pem")}},
		{"CA without certificates", ClientConfig{CAFile: garbage}},
		{"cert without key", ClientConfig{CertFile: garbage}},
		{"key without cert", ClientConfig{KeyFile: garbage}},
		{"unreadable key pair", ClientConfig{CertFile: garbage, KeyFile: garbage}},
		{"missing cert file", ClientConfig{CertFile: filepath.Join(tmpDir, "nope.pem"), KeyFile: garbage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHTTPClient(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
