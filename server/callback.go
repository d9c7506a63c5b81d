package server

import (
	"bytes"
	"encoding/json"
	"net/url"
)

// deliverCallback POSTs the response body to the callback URL. Strictly
// best effort: the primary response has already been written, so every
// failure path here only logs and counts.
func (s *Server) deliverCallback(callbackURL string, body interface{}) {
	if callbackURL == "" {
		return
	}

	parsed, err := url.Parse(callbackURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		s.log.Warn("invalid callback url", map[string]any{"callback": callbackURL})
		s.countCallback(false)
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		s.log.Warn("callback payload marshal failed", map[string]any{"error": err.Error()})
		s.countCallback(false)
		return
	}

	resp, err := s.callbackClient.Post(callbackURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.log.Warn("callback delivery failed", map[string]any{
			"callback": callbackURL,
			"error":    err.Error(),
		})
		s.countCallback(false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.Warn("callback rejected", map[string]any{
			"callback": callbackURL,
			"status":   resp.StatusCode,
		})
		s.countCallback(false)
		return
	}

	s.log.Debug("callback delivered", map[string]any{"callback": callbackURL})
	s.countCallback(true)
}
