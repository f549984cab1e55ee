package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/providers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) serveAPI(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.APIPort,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	s.logger.Info().Str("addr", srv.Addr).Msg("api listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("GET /api/providers", s.handleProviders)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.hub.ServeWS)

	return cors(mux)
}

type generateRequest struct {
	Template     string         `json:"template"`
	TemplateName string         `json:"template_name"`
	Context      map[string]any `json:"context"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
	Temperature  *float64       `json:"temperature"`
	Format       string         `json:"format"`
}

func (r generateRequest) overrides() promptable.Overrides {
	return promptable.Overrides{
		Model:       r.Model,
		Temperature: r.Temperature,
		Format:      providers.Format(r.Format),
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Template == "" && req.TemplateName == "" {
		jsonErr(w, "template or template_name required", http.StatusBadRequest)
		return
	}

	client, err := s.clientFor(req.Provider)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusBadRequest)
		return
	}

	prompt := client.Prompt(req.Template)
	if req.TemplateName != "" {
		if prompt, err = client.UseTemplate(req.TemplateName); err != nil {
			jsonErr(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	text, ok, err := prompt.Generate(r.Context(), req.Context, req.overrides())
	if err != nil {
		jsonErr(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonOK(w, map[string]any{"text": text, "ok": ok}, http.StatusOK)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		jsonErr(w, "job queue unavailable", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		generateRequest
		TypeName string `json:"type_name"`
		RecordID string `json:"record_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.TypeName == "" || req.RecordID == "" {
		jsonErr(w, "type_name and record_id required", http.StatusBadRequest)
		return
	}

	var o *promptable.Overrides
	if req.Model != "" || req.Temperature != nil || req.Format != "" {
		ov := req.overrides()
		o = &ov
	}
	id, err := s.client.GenerateLater(r.Context(), s.queue, req.TypeName, req.RecordID, req.Context, o)
	if err != nil {
		s.logger.Error().Err(err).Msg("enqueue failed")
		jsonErr(w, "queue error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"job_id": id, "status": "queued"}, http.StatusAccepted)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{"templates": s.client.Registry().List()}, http.StatusOK)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"providers": providers.Available(),
		"active":    s.client.Config().Provider,
	}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":     "online",
		"provider":   s.client.Config().Provider,
		"queue":      s.queue != nil,
		"ws_clients": s.hub.ClientCount(),
	}, http.StatusOK)
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
