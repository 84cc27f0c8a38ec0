package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
	"github.com/rakki194/nlrouter/internal/infra/hashutil"
	"github.com/rakki194/nlrouter/internal/infra/telemetry"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type toolsBody struct {
	Tools []domain.Tool `json:"tools"`
	Count int           `json:"count"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req domain.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, domain.CodeInvalidArgument, "invalid request body")
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get(telemetry.RequestIDHeader)
	}

	resp, err := s.pipeline.Suggest(r.Context(), req)
	if err != nil {
		code, ok := domain.CodeFrom(err)
		if !ok {
			code = domain.CodeInternal
		}
		s.writeError(w, statusForCode(code), code, err.Error())
		return
	}

	w.Header().Set(telemetry.RequestIDHeader, resp.RequestID)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	var tools []domain.Tool
	switch {
	case r.URL.Query().Get("q") != "":
		tools = s.registry.Search(r.URL.Query().Get("q"))
	case r.URL.Query().Get("category") != "":
		tools = s.registry.ToolsByCategory(r.URL.Query().Get("category"))
	default:
		tools = s.registry.List()
	}

	if etag := hashutil.ToolsETag(s.logger, tools); etag != "" {
		quoted := `"` + etag + `"`
		if r.Header.Get("If-None-Match") == quoted {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", quoted)
	}

	s.writeJSON(w, http.StatusOK, toolsBody{Tools: tools, Count: len(tools)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := telemetry.HealthReport{Status: telemetry.StatusHealthy, Available: true}
	if s.health != nil {
		report = s.health.Report()
	}

	status := http.StatusOK
	if report.Status == telemetry.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeFailedPrecond, domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	case domain.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case domain.CodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
