package client

// The client package talks to a timestamping server over HTTP. It fetches the
// server's verification key, requests signed timestamps for messages, and
// checks those timestamps offline. Verification never needs the server: once
// a client holds the public key, a receipt can be checked anywhere.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glowlabs-org/vts/vts"
)

// maxResponseBytes bounds how much of a server response is read.
const maxResponseBytes = 4 << 20

// VerificationKey is the key envelope returned by GET /key.
type VerificationKey struct {
	Request       string `json:"request"`
	TimeRequested string `json:"time-requested"`
	PublicKey     string `json:"public-key"`
}

// SignedTimestamp is the receipt returned by POST /sign.
type SignedTimestamp struct {
	Request    string `json:"request"`
	Message    string `json:"message"`
	TimeSigned string `json:"time-signed"`
	Signature  string `json:"signature"`
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Client is an HTTP client for a single timestamping server.
type Client struct {
	staticBaseURL    string
	staticHTTPClient *http.Client
}

// New returns a client for the server at serverAddr. The address may be a
// full URL or a bare host:port, in which case http is assumed.
func New(serverAddr string) *Client {
	return NewWithHTTPClient(serverAddr, &http.Client{Timeout: 30 * time.Second})
}

// NewWithHTTPClient is New with a caller supplied http.Client.
func NewWithHTTPClient(serverAddr string, hc *http.Client) *Client {
	base := strings.TrimRight(serverAddr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		staticBaseURL:    base,
		staticHTTPClient: hc,
	}
}

// BaseURL returns the URL prefix used for every request.
func (c *Client) BaseURL() string {
	return c.staticBaseURL
}

// RequestKey fetches the verification key of the server.
func (c *Client) RequestKey(ctx context.Context) (VerificationKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.staticBaseURL+"/key", nil)
	if err != nil {
		return VerificationKey{}, fmt.Errorf("unable to build key request: %v", err)
	}
	var vk VerificationKey
	if err := c.do(req, &vk); err != nil {
		return VerificationKey{}, fmt.Errorf("unable to request key: %w", err)
	}
	return vk, nil
}

// RequestTimestamp asks the server to timestamp and sign message.
func (c *Client) RequestTimestamp(ctx context.Context, message string) (SignedTimestamp, error) {
	body, err := json.Marshal(struct {
		Message string `json:"message"`
	}{Message: message})
	if err != nil {
		return SignedTimestamp{}, fmt.Errorf("unable to marshal sign request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.staticBaseURL+"/sign", bytes.NewReader(body))
	if err != nil {
		return SignedTimestamp{}, fmt.Errorf("unable to build sign request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var st SignedTimestamp
	if err := c.do(req, &st); err != nil {
		return SignedTimestamp{}, fmt.Errorf("unable to request timestamp: %w", err)
	}
	if st.Message != message {
		return SignedTimestamp{}, fmt.Errorf("server echoed a different message")
	}
	return st, nil
}

// do sends the request and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.staticHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("unable to read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unable to decode response: %v", err)
	}
	return nil
}

// VerifySignature checks a receipt against a verification key. Malformed
// base64, a malformed key or a bad signature all produce false.
func VerifySignature(st SignedTimestamp, vk VerificationKey) bool {
	return CheckSignature(st, vk) == nil
}

// CheckSignature is VerifySignature with the reason for a failure.
func CheckSignature(st SignedTimestamp, vk VerificationKey) error {
	pub, err := base64.StdEncoding.DecodeString(vk.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", vts.ErrMalformedPublicKey, err)
	}
	sig, err := base64.StdEncoding.DecodeString(st.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", vts.ErrMalformedSignature, err)
	}
	return vts.CheckTimestamp([]byte(st.Message), st.TimeSigned, sig, pub)
}

// DecodePublicKey parses the key envelope into a compressed public key.
func DecodePublicKey(vk VerificationKey) (vts.PublicKey, error) {
	data, err := base64.StdEncoding.DecodeString(vk.PublicKey)
	if err != nil {
		return vts.PublicKey{}, fmt.Errorf("%w: %v", vts.ErrMalformedPublicKey, err)
	}
	if len(data) != vts.PublicKeySize {
		return vts.PublicKey{}, fmt.Errorf("%w: length %d", vts.ErrMalformedPublicKey, len(data))
	}
	var pk vts.PublicKey
	copy(pk[:], data)
	return pk, nil
}

// DecodeSignature parses the signature of a receipt.
func DecodeSignature(st SignedTimestamp) (vts.Signature, error) {
	data, err := base64.StdEncoding.DecodeString(st.Signature)
	if err != nil {
		return vts.Signature{}, fmt.Errorf("%w: %v", vts.ErrMalformedSignature, err)
	}
	if len(data) != vts.SignatureSize {
		return vts.Signature{}, fmt.Errorf("%w: length %d", vts.ErrMalformedSignature, len(data))
	}
	var sig vts.Signature
	copy(sig[:], data)
	return sig, nil
}
