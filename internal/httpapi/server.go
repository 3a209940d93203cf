// Package httpapi exposes the search service over a small JSON GET surface.
// Malformed parameters never fail a request: unknown enum values fall back
// to defaults and out-of-range numbers are clamped, so every syntactically
// valid GET returns a well-formed page.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/internal/search"
)

// Server serves the JSON API
type Server struct {
	search *search.Service
	logger *log.Logger
}

// NewServer creates an API server over the search service
func NewServer(svc *search.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{search: svc, logger: logger}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/dealers", s.handleDealers)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.recoverPanics(mux)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, token := parseSearchRequest(r)

	resp, err := s.search.Search(r.Context(), req, token)
	if err != nil {
		s.logger.Printf("search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := s.search.Dealers(r.Context())
	if err != nil {
		s.logger.Printf("dealer listing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "dealer listing failed")
		return
	}
	writeJSON(w, http.StatusOK, dealers)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recoverPanics converts handler panics into 500s instead of dropping the
// connection.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Printf("panic serving %s: %v", r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// parseSearchRequest maps query parameters onto a search request. The
// bearer token (or token parameter) identifies the caller's tier.
func parseSearchRequest(r *http.Request) (query.Request, string) {
	q := r.URL.Query()

	req := query.Request{
		Tab:            query.Tab(q.Get("tab")),
		Category:       q.Get("cat"),
		ItemTypes:      multiValue(q, "type"),
		Certifications: multiValue(q, "cert"),
		Schools:        multiValue(q, "school"),
		DealerIDs:      int64Values(q, "dealer"),
		Periods:        multiValue(q, "period"),
		Signatures:     multiValue(q, "sig"),
		AskOnly:        boolValue(q.Get("ask")),
		PriceMin:       int64Value(q.Get("priceMin")),
		PriceMax:       int64Value(q.Get("priceMax")),
		ArtisanSub:     q.Get("artisan"),
		Text:           q.Get("q"),
		Sort:           query.Sort(q.Get("sort")),
		Page:           intValue(q.Get("page")),
		Limit:          intValue(q.Get("limit")),
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			req.Offset = &n
		}
	}

	token := q.Get("token")
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	}
	return req, token
}

// multiValue collects repeated and comma-separated values for a key
func multiValue(q map[string][]string, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func int64Values(q map[string][]string, key string) []int64 {
	var out []int64
	for _, v := range multiValue(q, key) {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}

func boolValue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func intValue(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func int64Value(v string) *int64 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
