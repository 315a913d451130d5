// internal/workers/compliance/query-regulations/handler.go
package queryregulations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	commonhttp "label-compliance/internal/common/http"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/metrics"
	"label-compliance/internal/models"
)

const (
	TaskType = "query-regulations"

	cacheKeyPrefix = "regulations:"
)

// AnswerCache stores serialized regulations answers. *cache.RedisClient implements it.
type AnswerCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Handler asks the regulations agent a question about a label.
type Handler struct {
	config *Config
	client *commonhttp.Client
	cache  AnswerCache
	logger logger.Logger
}

// NewHandler builds the handler. cache may be nil.
func NewHandler(cfg *Config, cache AnswerCache, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		client: commonhttp.NewClient(commonhttp.Options{
			Service:   "regulations",
			Timeout:   cfg.Timeout,
			Retry:     cfg.Retry,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		}),
		cache:  cache,
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	answer, err := h.Query(ctx, input.Question)
	if err != nil {
		return nil, err
	}
	return &Output{Found: answer.HasAnswer(), Regulations: *answer}, nil
}

// Query returns the parsed answer. Transport failures are returned as
// *errors.StandardError; an empty answer is a success with Answer nil.
func (h *Handler) Query(ctx context.Context, question string) (*models.RegulationsAnswer, error) {
	start := time.Now()
	key := h.cacheKey(question)

	if cached, ok := h.lookup(ctx, key); ok {
		return cached, nil
	}

	resp, err := h.client.PostJSON(ctx, h.config.APIURL, regulationsRequest{
		AIAgentID:                h.config.AIAgentID,
		UserQuery:                question,
		ConfigurationEnvironment: h.config.ConfigurationEnvironment,
	})
	if err != nil {
		h.logger.Error("Regulations request failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	answer, err := parseAnswer(resp.Body)
	if err != nil {
		h.logger.Warn("Unreadable regulations response", map[string]interface{}{"error": err.Error()})
		answer = &models.RegulationsAnswer{Sources: []string{}}
	}
	answer.ProcessingTimeMs = time.Since(start).Milliseconds()

	h.logger.Info("Regulations answered", map[string]interface{}{
		"found":            answer.HasAnswer(),
		"sources":          len(answer.Sources),
		"attempts":         resp.Attempts,
		"processingTimeMs": answer.ProcessingTimeMs,
	})

	if answer.HasAnswer() {
		h.store(ctx, key, answer)
	}
	return answer, nil
}

func (h *Handler) Health() commonhttp.HealthInfo {
	return h.client.Health(h.config.APIURL, h.config.AIAgentID, h.config.ConfigurationEnvironment)
}

func (h *Handler) cacheKey(question string) string {
	sum := sha256.Sum256([]byte(h.config.AIAgentID + "\x00" + question))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (h *Handler) lookup(ctx context.Context, key string) (*models.RegulationsAnswer, bool) {
	if h.cache == nil {
		return nil, false
	}
	value, found, err := h.cache.Get(ctx, key)
	if err != nil {
		metrics.RegulationsCache.WithLabelValues("error").Inc()
		h.logger.Warn("Regulations cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	if !found {
		metrics.RegulationsCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var answer models.RegulationsAnswer
	if err := json.Unmarshal(value, &answer); err != nil || !answer.HasAnswer() {
		metrics.RegulationsCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	metrics.RegulationsCache.WithLabelValues("hit").Inc()
	h.logger.Debug("Regulations served from cache", map[string]interface{}{"key": key})
	return &answer, true
}

func (h *Handler) store(ctx context.Context, key string, answer *models.RegulationsAnswer) {
	if h.cache == nil {
		return
	}
	value, err := json.Marshal(answer)
	if err == nil {
		err = h.cache.Set(ctx, key, value)
	}
	if err != nil {
		metrics.RegulationsCache.WithLabelValues("error").Inc()
		h.logger.Warn("Regulations cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
