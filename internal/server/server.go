// Package server provides the HTTP REST API for career-copilot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-copilot/internal/ai"
	"github.com/jonathan/career-copilot/internal/config"
	"github.com/jonathan/career-copilot/internal/llm"
	"github.com/jonathan/career-copilot/internal/server/middleware"
	"github.com/jonathan/career-copilot/internal/server/ratelimit"
	"github.com/jonathan/career-copilot/internal/store"
	"github.com/jonathan/career-copilot/internal/types"
)

const (
	serviceName    = "career-copilot"
	serviceVersion = "1.0.0"
)

// Seed account created at startup so the service is usable out of the box.
const (
	seedUserName     = "Test User"
	seedUserEmail    = "test@example.com"
	seedUserPassword = "testpassword123"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	users       *store.Users
	llmClient   llm.Client
	aiService   *ai.Service
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	aiHandler   *AIHandler
}

// Config holds server configuration
type Config struct {
	Port int
	// APIKey for the external text-generation service. When empty the AI
	// endpoints degrade to 503 (strict) or canned fallbacks (non-strict)
	// instead of failing startup.
	APIKey string
	// StrictUpstreamErrors selects hard failures (503/502) over canned
	// fallback payloads when the upstream is unconfigured or misbehaves.
	StrictUpstreamErrors bool
	// LLMClient overrides APIKey-based client construction when non-nil.
	// Used by tests and alternate provider wiring.
	LLMClient llm.Client
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	s := &Server{
		users: store.NewUsers(),
	}

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Initialize authentication services
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(s.users, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)

	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	// Initialize the external text-generation client. A missing key is not a
	// startup failure: the AI endpoints degrade per StrictUpstreamErrors.
	if cfg.LLMClient != nil {
		s.llmClient = cfg.LLMClient
	} else if cfg.APIKey != "" {
		client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		s.llmClient = client
	} else {
		log.Printf("GEMINI_API_KEY is not set; AI endpoints will be unavailable")
	}
	s.aiService = ai.New(s.llmClient, cfg.StrictUpstreamErrors)
	s.aiHandler = NewAIHandler(s.aiService)

	if err := s.seedUsers(); err != nil {
		return nil, err
	}

	// Setup router
	requireAuth := middleware.AuthMiddleware(s.jwtService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(s.authHandler.Me)))

	mux.Handle("POST /api/ai/generate", requireAuth(http.HandlerFunc(s.aiHandler.Generate)))
	mux.Handle("POST /api/ai/ats-score", requireAuth(http.HandlerFunc(s.aiHandler.ATSScore)))
	mux.Handle("POST /api/ai/analyze-job", requireAuth(http.HandlerFunc(s.aiHandler.AnalyzeJob)))
	mux.Handle("POST /api/ai/analyze-resume", requireAuth(http.HandlerFunc(s.aiHandler.AnalyzeResume)))
	mux.Handle("POST /api/ai/chat", requireAuth(http.HandlerFunc(s.aiHandler.Chat)))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Upstream AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// seedUsers creates the built-in test account.
func (s *Server) seedUsers() error {
	_, err := s.userService.Register(&types.RegisterRequest{
		Name:     seedUserName,
		Email:    seedUserEmail,
		Password: seedUserPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to seed test account: %w", err)
	}
	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains connections.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		if s.llmClient != nil {
			_ = s.llmClient.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging with a short per-request ID.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		start := time.Now()
		log.Printf("[%s] %s %s rid=%s", r.Method, r.URL.Path, r.RemoteAddr, requestID)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s rid=%s completed in %v", r.Method, r.URL.Path, requestID, time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus returns a service descriptor with endpoint groupings.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": serviceVersion,
		"endpoints": map[string][]string{
			"auth": {
				"POST /api/auth/register",
				"POST /api/auth/login",
				"GET /api/auth/me",
			},
			"ai": {
				"POST /api/ai/generate",
				"POST /api/ai/ats-score",
				"POST /api/ai/analyze-job",
				"POST /api/ai/analyze-resume",
				"POST /api/ai/chat",
			},
			"system": {
				"GET /health",
				"GET /api/status",
			},
		},
		"ai_configured": s.aiService.Configured(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately
// ignored because the service has no trusted-proxy configuration.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
