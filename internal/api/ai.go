package api

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"

	"probel/internal/aiwire"
)

// handleAI relays a Messages API request with the server-held key. The body
// is forwarded verbatim; a successful reply is passed through unchanged.
func (s *Server) handleAI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !s.anonKeyOK(r) {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	s.log.Debug("ai proxy", zap.Bool("keyConfigured", s.cfg.AnthropicKey != ""))
	if s.cfg.AnthropicKey == "" {
		writeError(w, http.StatusInternalServerError, "AI provider key is not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.UpstreamURL, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.cfg.AnthropicKey)
	req.Header.Set("anthropic-version", aiwire.Version)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("ai upstream request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Error("ai upstream read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("ai upstream error", zap.Int("status", resp.StatusCode), zap.ByteString("body", out))
		writeError(w, resp.StatusCode, "API Error: "+string(out))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
