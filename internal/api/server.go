package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/config"
	"github.com/steamtestpanel/steam-test-panel/internal/metrics"
	"github.com/steamtestpanel/steam-test-panel/internal/store"
	"github.com/steamtestpanel/steam-test-panel/internal/transfer"
)

// Server represents the HTTP API server
type Server struct {
	store    *store.Store
	exporter *transfer.Exporter
	importer *transfer.Importer
	metrics  *metrics.Metrics
	config   *config.Config
	logger   *logrus.Logger
}

// NewServer creates a new API server
func NewServer(st *store.Store, exporter *transfer.Exporter, importer *transfer.Importer,
	m *metrics.Metrics, cfg *config.Config, logger *logrus.Logger) *Server {
	return &Server{
		store:    st,
		exporter: exporter,
		importer: importer,
		metrics:  m,
		config:   cfg,
		logger:   logger,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	// SQL transfer
	mux.HandleFunc("/api/v1/transfer/export", s.handleExport)
	mux.HandleFunc("/api/v1/transfer/import", s.handleImport)

	// Reports and their subresources
	mux.HandleFunc("/api/v1/reports", s.handleReports)
	mux.HandleFunc("/api/v1/reports/", s.handleReport)

	// Users
	mux.HandleFunc("/api/v1/users", s.handleUsers)
	mux.HandleFunc("/api/v1/users/", s.handleUser)

	// Client versions and notifications
	mux.HandleFunc("/api/v1/versions", s.handleVersions)
	mux.HandleFunc("/api/v1/notifications", s.handleNotifications)
	mux.HandleFunc("/api/v1/notifications/", s.handleNotification)

	// Tags
	mux.HandleFunc("/api/v1/tags", s.handleTags)
	mux.HandleFunc("/api/v1/tags/", s.handleTag)

	// Test templates
	mux.HandleFunc("/api/v1/templates", s.handleTemplates)
	mux.HandleFunc("/api/v1/templates/", s.handleTemplate)

	// Retest queue
	mux.HandleFunc("/api/v1/retests", s.handleRetests)
	mux.HandleFunc("/api/v1/retests/", s.handleRetest)
	mux.HandleFunc("/api/v1/fixed-tests", s.handleFixedTests)

	// Invite codes
	mux.HandleFunc("/api/v1/invites", s.handleInvites)
	mux.HandleFunc("/api/v1/invites/redeem", s.handleRedeemInvite)

	// Site settings
	mux.HandleFunc("/api/v1/settings", s.handleSettings)
	mux.HandleFunc("/api/v1/settings/", s.handleSetting)

	return s.loggingMiddleware(s.metricsMiddleware(mux))
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Infof("%s %s %d %s", r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		path := metricPath(r.URL.Path)
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// metricPath collapses entity ids so the path label stays low-cardinality
func metricPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if _, err := strconv.ParseInt(part, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// pathID extracts the numeric id segment following prefix, plus any trailing
// subresource segment ("" when absent)
func pathID(path, prefix string) (int64, string, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	segments := strings.SplitN(rest, "/", 2)

	id, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		return 0, "", err
	}

	sub := ""
	if len(segments) == 2 {
		sub = segments[1]
	}
	return id, sub, nil
}
