package server

import (
	"encoding/base64"
	"net/http"
)

// KeyResponse is the response of the GET /key endpoint.
type KeyResponse struct {
	Request       string `json:"request"`
	TimeRequested string `json:"time-requested"`
	PublicKey     string `json:"public-key"` // base64 of the compressed public key
}

// KeyHandler returns the public key of the server along with the time that
// the key was requested.
func (vs *VTSServer) KeyHandler(w http.ResponseWriter, r *http.Request) {
	vk := vs.staticSigner.VerificationKey()
	resp := KeyResponse{
		Request:       http.MethodGet,
		TimeRequested: vk.IssuedAt,
		PublicKey:     base64.StdEncoding.EncodeToString(vk.PublicKey[:]),
	}
	vs.staticMetrics.keyRequests.Inc()
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		vs.logger.Warnf("unable to write key response: %v", err)
	}
}
