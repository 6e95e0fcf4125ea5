package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// SignRequest is the body of a POST /sign request. Message is a pointer so
// that a missing field can be told apart from an empty message.
type SignRequest struct {
	Message *string `json:"message"`
}

// SignResponse is the response of the POST /sign endpoint. TimeSigned is the
// exact timestamp string that was signed together with the message.
type SignResponse struct {
	Request    string `json:"request"`
	Message    string `json:"message"`
	TimeSigned string `json:"time-signed"`
	Signature  string `json:"signature"` // base64 of r || s
}

// SignHandler timestamps and signs the message in the request body.
func (vs *VTSServer) SignHandler(w http.ResponseWriter, r *http.Request) {
	if vs.staticSignLimiter != nil && !vs.staticSignLimiter.Allow(clientKey(r)) {
		vs.staticMetrics.signs.WithLabelValues("rate_limited").Inc()
		writeJSONError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	message, err := decodeSignRequest(w, r, vs.staticConfig.MaxRequestBytes)
	if err != nil {
		vs.staticMetrics.signs.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	signed, err := vs.staticSigner.Sign([]byte(message))
	vs.staticMetrics.signDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		vs.staticMetrics.signs.WithLabelValues("error").Inc()
		vs.logger.Errorf("unable to sign message: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign message")
		return
	}
	vs.staticMetrics.signs.WithLabelValues("ok").Inc()

	resp := SignResponse{
		Request:    http.MethodPost,
		Message:    message,
		TimeSigned: signed.Timestamp,
		Signature:  base64.StdEncoding.EncodeToString(signed.Signature[:]),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		vs.logger.Warnf("unable to write sign response: %v", err)
	}
}

// decodeSignRequest reads a SignRequest from the body. Unknown fields,
// trailing data, a missing message and bodies over limit are all rejected.
func decodeSignRequest(w http.ResponseWriter, r *http.Request, limit int64) (string, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req SignRequest
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", fmt.Errorf("request body exceeds %d bytes", limit)
		}
		return "", fmt.Errorf("invalid request body: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", errors.New("invalid request body: unexpected data after JSON object")
	}
	if req.Message == nil {
		return "", errors.New("invalid request body: missing field \"message\"")
	}
	return *req.Message, nil
}

// clientKey identifies the caller for rate limiting.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
