package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id that the server assigned to a request.
const RequestIDHeader = "X-Request-Id"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// newRouter attaches all of the handlers to a fresh router.
func (vs *VTSServer) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(vs.requestMiddleware)

	r.Get("/key", vs.KeyHandler)
	r.Post("/sign", vs.SignHandler)
	if vs.staticConfig.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", vs.staticMetrics.handler())
	}

	r.NotFound(vs.invalidRequestHandler)
	r.MethodNotAllowed(vs.methodNotAllowedHandler)
	return r
}

// launchAPI starts the HTTP server on the configured address.
func (vs *VTSServer) launchAPI() error {
	// Create a listener. In prod it's a specfic port, during testing it's
	// ":0". Because we don't know what the port is during testing, we need
	// to build the listener manually so that we can grab the port from it.
	listener, err := net.Listen("tcp", vs.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("unable to launch vts api: %v", err)
	}
	vs.httpPort = uint16(listener.Addr().(*net.TCPAddr).Port)

	// Launch the background thread that keeps the API running. The
	// listener gets handed off to the httpServer, which will be
	// responsible for closing the listener, therefore the listener does
	// not need to be closed here. If the Launch fails, the listener will
	// never get attached to the httpServer, which means we will have to
	// close it manually.
	err = vs.tg.Launch(func() {
		vs.logger.Info("Starting HTTP server on ", listener.Addr().String())
		if err := vs.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			vs.logger.Fatal("Could not start HTTP server: ", err)
		}
	})
	if err != nil {
		listener.Close()
		return fmt.Errorf("unable to launch vts api: %v", err)
	}
	return nil
}

// requestMiddleware tags every request with an id, records the status in the
// metrics and writes a debug line once the handler returns.
func (vs *VTSServer) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set(RequestIDHeader, reqID)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		vs.staticMetrics.observeRequest(route, status)
		vs.logger.Debugw("request",
			"request_id", reqID,
			"method", r.Method,
			"route", route,
			"status", status,
			"remote", r.RemoteAddr,
		)
	})
}

// invalidRequestHandler answers every route the server does not know.
func (vs *VTSServer) invalidRequestHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Invalid request", http.StatusBadRequest)
}

// methodNotAllowedHandler answers known routes hit with the wrong method.
func (vs *VTSServer) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes v as the response body with the provided status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an ErrorResponse with the provided status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, ErrorResponse{Error: msg})
}
