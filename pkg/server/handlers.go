package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/telemetry/logging"
)

type estimateRequest struct {
	Model string `json:"model"`
	engine.UsageRequest
}

type compareRequest struct {
	Models []string `json:"models,omitempty"`
	engine.UsageRequest
}

type compareResponse struct {
	Results []*engine.Result `json:"results"`
}

type batchRequest struct {
	Items []engine.BatchItem `json:"items"`
}

type batchResponse struct {
	Results []*engine.Result `json:"results"`
}

type quoteRequest struct {
	Model   string             `json:"model"`
	Tokens  float64            `json:"tokens"`
	Routers routers.RouterPath `json:"routers,omitempty"`
}

type equivalentsRequest struct {
	EnergyWh float64 `json:"energy_wh"`
}

type modelsResponse struct {
	Models     []catalog.PricingModel `json:"models"`
	Routers    routers.RouterPath     `json:"routers"`
	Commission float64                `json:"commission_rate"`
}

type historyResponse struct {
	Records []history.RunRecord `json:"records"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

func (s *Server) maxBodyBytes() int64 {
	if s.config.MaxBodyBytes > 0 {
		return s.config.MaxBodyBytes
	}
	return config.DefaultMaxBodyBytes
}

// readJSON decodes a size-limited JSON body into v. Unknown fields are
// rejected.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBodyError(w, err)
		return false
	}
	return true
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, errorTypeInvalidRequest,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), "")
		return
	}
	writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, "invalid request body: "+err.Error(), "")
}

func requireModel(w http.ResponseWriter, model string) bool {
	if model == "" {
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, "model is required", "model")
		return false
	}
	return true
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !s.readJSON(w, r, &req) || !requireModel(w, req.Model) {
		return
	}

	ctx := logging.WithModel(r.Context(), req.Model)
	res, err := s.svc.Estimate(ctx, req.Model, req.UsageRequest)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	results, err := s.svc.Compare(r.Context(), req.Models, req.UsageRequest)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Results: results})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	for i, item := range req.Items {
		if item.ModelID == "" {
			writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, "model is required", fmt.Sprintf("items[%d].model", i))
			return
		}
	}

	results, err := s.svc.Batch(r.Context(), req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !s.readJSON(w, r, &req) || !requireModel(w, req.Model) {
		return
	}

	q, err := s.svc.QuoteWithPath(r.Context(), req.Model, req.Tokens, req.Routers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleEquivalents(w http.ResponseWriter, r *http.Request) {
	var req equivalentsRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	out, err := s.svc.Equivalents(r.Context(), req.EnergyWh)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	path := s.svc.RouterPath()
	writeJSON(w, http.StatusOK, modelsResponse{
		Models:     s.svc.Catalog().Models(),
		Routers:    path,
		Commission: routers.CommissionRate(path),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.parseFilter(w, r, true)
	if !ok {
		return
	}

	records, err := s.svc.History(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []history.RunRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Records: records, Limit: filter.Limit, Offset: filter.Offset})
}

func (s *Server) handleHistorySummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.parseFilter(w, r, false)
	if !ok {
		return
	}

	summary, err := s.svc.Summarize(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// parseFilter reads model, since, until and, when paged, limit and offset
// from the query string.
func (s *Server) parseFilter(w http.ResponseWriter, r *http.Request, paged bool) (storage.Filter, bool) {
	q := r.URL.Query()
	filter := storage.Filter{ModelID: q.Get("model")}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"since", &filter.Since},
		{"until", &filter.Until},
	} {
		raw := q.Get(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, bound.name+" must be an RFC 3339 timestamp", bound.name)
			return filter, false
		}
		*bound.dst = &t
	}

	if paged {
		filter.Limit = s.query.DefaultLimit
		for _, p := range []struct {
			name string
			dst  *int
		}{
			{"limit", &filter.Limit},
			{"offset", &filter.Offset},
		} {
			raw := q.Get(p.name)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, p.name+" must be a non-negative integer", p.name)
				return filter, false
			}
			*p.dst = n
		}
		if s.query.MaxLimit > 0 && (filter.Limit == 0 || filter.Limit > s.query.MaxLimit) {
			filter.Limit = s.query.MaxLimit
		}
	}

	if err := filter.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, err.Error(), "")
		return filter, false
	}
	return filter, true
}
