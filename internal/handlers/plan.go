package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/eventbus"
	"github.com/tripcast/api/internal/geo"
	"github.com/tripcast/api/internal/llm"
	"github.com/tripcast/api/internal/metrics"
	"github.com/tripcast/api/internal/middleware"
	"github.com/tripcast/api/internal/models"
	"github.com/tripcast/api/internal/prompt"
	"github.com/tripcast/api/internal/stream"
)

// PlanHandler streams trip plans from the generation backend to the caller
// while mirroring reasoning progress to debug observers.
type PlanHandler struct {
	generator *llm.Client
	hub       *eventbus.Hub
	breaker   *middleware.CircuitBreaker
	cache     *gocache.Cache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(generator *llm.Client, hub *eventbus.Hub, breaker *middleware.CircuitBreaker,
	cache *gocache.Cache, m *metrics.Metrics, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		generator: generator,
		hub:       hub,
		breaker:   breaker,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// GeneratePlan handles POST /api/v1/plan. The response is a server-sent
// event stream: chunk events while the generator is talking, then exactly
// one done or error event.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	start := time.Now()

	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, req.Mode, http.StatusBadRequest, err.Error())
		return
	}

	if !req.Mode.Valid() {
		h.reject(c, req.Mode, http.StatusBadRequest, fmt.Sprintf("unsupported mode %q", req.Mode))
		return
	}

	origin := geo.Coordinate{Lat: req.Hotel.Lat, Lng: req.Hotel.Lng}
	if err := geo.Validate("hotel", origin.Lat, origin.Lng); err != nil {
		h.reject(c, req.Mode, http.StatusBadRequest, err.Error())
		return
	}

	admitted, err := geo.Filter(origin, req.Activities, geo.Constraints{
		Budget:      req.Preferences.Budget,
		MaxDistance: req.Preferences.MaxDistance,
	})
	if err != nil {
		h.reject(c, req.Mode, http.StatusBadRequest, err.Error())
		return
	}

	if !h.generator.Configured() {
		h.reject(c, req.Mode, http.StatusServiceUnavailable, "generator API key is not configured")
		return
	}

	key := fingerprint(&req, admitted)
	if cached, ok := h.cache.Get(key); ok {
		h.metrics.CacheHits.Inc()
		h.metrics.PlanRequests.WithLabelValues(string(req.Mode), metrics.OutcomeCached).Inc()
		h.notify(models.NewNotification(models.SeverityInfo, "Serving previously generated plan"))

		startEventStream(c)
		writeEvent(c, models.StreamEvent{Type: models.StreamEventDone, Response: cached.(string)})
		return
	}

	promptText, err := prompt.Build(&req, admitted)
	if err != nil {
		h.reject(c, req.Mode, http.StatusBadRequest, err.Error())
		return
	}

	fragments, err := h.generator.Stream(c.Request.Context(), promptText)
	if err != nil {
		h.breaker.RecordFailure()
		h.metrics.PlanRequests.WithLabelValues(string(req.Mode), metrics.OutcomeFailed).Inc()
		h.logger.Error("generator unreachable", zap.Error(err), zap.String("mode", string(req.Mode)))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("plan stream started",
		zap.String("mode", string(req.Mode)),
		zap.String("city", req.Hotel.City),
		zap.Int("candidates", len(req.Activities)),
		zap.Int("admitted", len(admitted)),
	)

	startEventStream(c)

	classifier := stream.NewClassifier()
	for frag := range fragments {
		if frag.Err != nil {
			h.notify(classifier.Fail(frag.Err))
			writeEvent(c, models.StreamEvent{Type: models.StreamEventError, Error: frag.Err.Error()})
			h.breaker.RecordFailure()
			h.metrics.PlanRequests.WithLabelValues(string(req.Mode), metrics.OutcomeFailed).Inc()
			h.logger.Error("plan stream failed", zap.Error(frag.Err), zap.String("mode", string(req.Mode)))
			return
		}
		if frag.Done {
			break
		}

		h.metrics.Fragments.Inc()
		for _, note := range classifier.Feed(frag.Content) {
			h.notify(note)
		}
		writeEvent(c, models.StreamEvent{Type: models.StreamEventChunk, Content: frag.Content})
	}

	result := stream.Extract(classifier.Accumulated())
	if summary := stream.Summary(result); summary != nil {
		h.notify(*summary)
	}

	h.cache.Set(key, result.ResultText, gocache.DefaultExpiration)
	writeEvent(c, models.StreamEvent{Type: models.StreamEventDone, Response: result.ResultText})

	h.breaker.RecordSuccess()
	h.metrics.PlanRequests.WithLabelValues(string(req.Mode), metrics.OutcomeCompleted).Inc()
	h.metrics.PlanDuration.Observe(time.Since(start).Seconds())
	h.logger.Info("plan stream completed",
		zap.String("mode", string(req.Mode)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("result_bytes", len(result.ResultText)),
	)
}

// reject ends the request before any streaming begins.
func (h *PlanHandler) reject(c *gin.Context, mode models.PlanMode, status int, message string) {
	h.metrics.PlanRequests.WithLabelValues(string(mode), metrics.OutcomeRejected).Inc()
	c.JSON(status, gin.H{"error": message})
}

// notify mirrors a progress notification to the debug observers.
func (h *PlanHandler) notify(note models.ProgressNotification) {
	h.hub.Broadcast(note)
	h.metrics.Notifications.WithLabelValues(string(note.Severity)).Inc()
}

// fingerprint identifies a plan request for the result cache. Two requests
// with the same mode, origin, admitted candidates and preferences share one
// generated plan until the cache entry expires.
func fingerprint(req *models.PlanRequest, admitted []models.Activity) string {
	sum := sha256.New()
	enc := json.NewEncoder(sum)
	enc.Encode(req.Mode)
	enc.Encode(req.Hotel)
	enc.Encode(req.Preferences)
	enc.Encode(admitted)
	return hex.EncodeToString(sum.Sum(nil))
}

// startEventStream switches the response over to server-sent events.
func startEventStream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()
}

// writeEvent emits one SSE data frame and flushes it to the client so
// fragments render as they arrive.
func writeEvent(c *gin.Context, event models.StreamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
