package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "rotation-trader",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handlePortfolio returns the current portfolio snapshot
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.portfolio.Snapshot(time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build portfolio snapshot")
		s.writeError(w, http.StatusInternalServerError, "failed to build portfolio snapshot")
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

// handlePerformance returns realized performance metrics
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	report, err := s.performance.Report()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to compute performance report")
		s.writeError(w, http.StatusInternalServerError, "failed to compute performance report")
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleRebalancePreview evaluates a plan without executing it
func (s *Server) handleRebalancePreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.rebalancer.Preview(time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to preview rebalance")
		s.writeError(w, http.StatusInternalServerError, "failed to preview rebalance")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleRebalanceLast returns the most recently executed rebalance
func (s *Server) handleRebalanceLast(w http.ResponseWriter, r *http.Request) {
	result := s.rebalancer.LastResult()
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no rebalance has run yet")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleRebalanceRun triggers a rebalance immediately, outside the schedule
func (s *Server) handleRebalanceRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.rebalancer.Rebalance(time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("Manual rebalance failed")
		s.writeError(w, http.StatusInternalServerError, "rebalance failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleTrades returns the most recent executed trades
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.trades.GetRecent(100)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load trades")
		s.writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	s.writeJSON(w, http.StatusOK, trades)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
