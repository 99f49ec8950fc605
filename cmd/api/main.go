package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"call-coach-go/internal/coaching"
	"call-coach-go/internal/health"
	"call-coach-go/internal/logger"
	"call-coach-go/internal/metrics"
	"call-coach-go/internal/objection"
	"call-coach-go/internal/pipeline"
	"call-coach-go/internal/report"
	"call-coach-go/internal/resilience"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-coach-go").Info("starting service")

	dbPath := envOr("DB_PATH", "callcoach.db")
	st, err := store.Open(dbPath, log.Entry)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()
	log.WithField("db_path", dbPath).Info("store ready")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	coachConfig := coaching.Config{
		GatewayURL: os.Getenv("LLM_GATEWAY_URL"),
		APIKey:     os.Getenv("LLM_API_KEY"),
		Model:      envOr("LLM_MODEL", "gpt-4o-mini"),
	}
	coach := coaching.NewAnalyzer(coachConfig, log.Entry)

	breakerConfig := resilience.Config{
		FailureThreshold: envInt("BREAKER_FAILURE_THRESHOLD", 3),
		ResetTimeout:     time.Duration(envInt("BREAKER_RESET_TIMEOUT_SEC", 30)) * time.Second,
		HalfOpenMaxCalls: envInt("BREAKER_HALF_OPEN_MAX_CALLS", 2),
	}
	rm := resilience.NewManager(log.Entry, breakerConfig)

	monitor := health.NewMonitor(st, []health.Credential{
		{Name: "llm_api_key", Value: coachConfig.APIKey},
	}, log.Entry)

	matcher := objection.NewMatcher(st, log.Entry)
	pipe := pipeline.New(st, matcher, coach, rm, monitor, m, log.Entry)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snapshot := monitor.Status(r.Context())
		status := http.StatusOK
		if snapshot.Status == health.OverallUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, snapshot)
	})

	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req pipeline.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad analyze payload")
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.CallID == "" {
			req.CallID = uuid.New().String()
		}
		reqLog = reqLog.WithField("call_id", req.CallID)
		reqLog.WithField("turns", len(req.Transcript)).Info("analyze request received")

		res, err := pipe.AnalyzeCall(r.Context(), req)
		if err != nil {
			reqLog.WithError(err).Error("analysis failed")
			http.Error(w, "analysis failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/coach", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "coach")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			CallID     string                  `json:"call_id"`
			Persona    string                  `json:"persona"`
			Transcript []types.TranscriptEntry `json:"transcript"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CallID == "" {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		reqLog = reqLog.WithField("call_id", req.CallID)
		reqLog.Info("coaching request received")

		analysis, err := pipe.Coach(r.Context(), req.CallID, req.Transcript, req.Persona)
		if err != nil {
			// "Coaching unavailable" is a first-class state, not an error.
			if reason, ok := pipeline.Unavailable(err); ok {
				reqLog.WithField("reason", reason).Info("coaching unavailable")
				writeJSON(w, http.StatusOK, map[string]any{"available": false, "reason": reason})
				return
			}
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "call has not been scored", http.StatusNotFound)
				return
			}
			reqLog.WithError(err).Error("coaching failed")
			http.Error(w, "coaching failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"available": true, "analysis": analysis})
	})

	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := r.URL.Query().Get("path")
		if path == "" {
			path = fmt.Sprintf("scorecard-%s.xlsx", time.Now().Format("20060102-150405"))
		}
		scores, err := st.ListCallScores(r.Context())
		if err != nil {
			reqLog.WithError(err).Error("failed to load scores")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		if err := report.WriteScorecard(path, scores); err != nil {
			reqLog.WithError(err).Error("failed to write scorecard")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("path", path).WithField("rows", len(scores)).Info("scorecard exported")
		writeJSON(w, http.StatusOK, map[string]any{"path": path, "rows": len(scores)})
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
