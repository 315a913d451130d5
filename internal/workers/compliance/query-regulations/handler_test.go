package queryregulations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-compliance/internal/common/cache"
	"label-compliance/internal/common/config"
	"label-compliance/internal/common/errors"
	commonhttp "label-compliance/internal/common/http"
	"label-compliance/internal/common/logger"
)

const question = "What are the rules and regulations for exporting beef to Canada?"

func testConfig(url string) *Config {
	policy := commonhttp.DefaultRetryPolicy()
	policy.BaseDelay = time.Millisecond
	policy.MaxDelay = time.Millisecond
	return &Config{
		APIURL:                   url,
		AIAgentID:                "rag-agent",
		ConfigurationEnvironment: "DEV",
		Timeout:                  2 * time.Second,
		Retry:                    policy,
	}
}

func stubRegulations(t *testing.T, calls *int32, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		var req regulationsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rag-agent", req.AIAgentID)
		assert.Equal(t, question, req.UserQuery)
		assert.Equal(t, "DEV", req.ConfigurationEnvironment)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		answer  string
		found   bool
		sources []string
	}{
		{
			name:    "top level",
			body:    `{"answer":"Beef requires CFIA certification.","sources":["CFIA.pdf"],"confidence":0.92}`,
			answer:  "Beef requires CFIA certification.",
			found:   true,
			sources: []string{"CFIA.pdf"},
		},
		{
			name:    "data string",
			body:    `{"data":"Honey needs a permit.","references":"Honey_Rules.pdf"}`,
			answer:  "Honey needs a permit.",
			found:   true,
			sources: []string{"Honey_Rules.pdf"},
		},
		{
			name:    "data object",
			body:    `{"data":{"answer":"Label in English and French.","references":["CA_Labeling.pdf","CFIA.pdf"],"confidence":"0.5"}}`,
			answer:  "Label in English and French.",
			found:   true,
			sources: []string{"CA_Labeling.pdf", "CFIA.pdf"},
		},
		{name: "null answer", body: `{"answer":null}`, sources: []string{}},
		{name: "blank answer", body: `{"answer":"   ","sources":[]}`, sources: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := parseAnswer([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.found, answer.HasAnswer())
			assert.Equal(t, tt.answer, answer.AnswerText())
			assert.Equal(t, tt.sources, answer.Sources)
			if !tt.found {
				assert.Nil(t, answer.Answer)
			}
		})
	}

	answer, err := parseAnswer([]byte(`{"answer":"x","confidence":0.92}`))
	require.NoError(t, err)
	require.NotNil(t, answer.Confidence)
	assert.InDelta(t, 0.92, *answer.Confidence, 1e-9)

	answer, err = parseAnswer([]byte(`{"data":{"answer":"x","confidence":"0.5"}}`))
	require.NoError(t, err)
	require.NotNil(t, answer.Confidence)
	assert.InDelta(t, 0.5, *answer.Confidence, 1e-9)
}

func TestQuery_Found(t *testing.T) {
	var calls int32
	server := stubRegulations(t, &calls, http.StatusOK, `{"answer":"Beef requires CFIA certification.","sources":["CFIA.pdf"]}`)

	out, err := NewHandler(testConfig(server.URL), nil, logger.NewTestLogger(t)).Execute(context.Background(), &Input{Question: question})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, "Beef requires CFIA certification.", out.Regulations.AnswerText())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQuery_EmptyIsSuccess(t *testing.T) {
	var calls int32
	server := stubRegulations(t, &calls, http.StatusOK, `{"answer":""}`)

	out, err := NewHandler(testConfig(server.URL), nil, logger.NewNoOpLogger()).Execute(context.Background(), &Input{Question: question})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Nil(t, out.Regulations.Answer)
}

func TestQuery_TransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.ErrorCode
		calls  int32
	}{
		{name: "server error retried", status: http.StatusServiceUnavailable, code: errors.ErrCodeServiceUnavailable, calls: 3},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, code: errors.ErrCodeServiceTimeout, calls: 3},
		{name: "client error not retried", status: http.StatusNotFound, code: errors.ErrCodeServiceUnavailable, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := stubRegulations(t, &calls, tt.status, `{"message":"nope"}`)

			_, err := NewHandler(testConfig(server.URL), nil, logger.NewNoOpLogger()).Query(context.Background(), question)
			assert.True(t, errors.HasCode(err, tt.code))
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))
		})
	}
}

// ==========================
// Answer cache
// ==========================

func newCache(t *testing.T) (*miniredis.Miniredis, *cache.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewRedis(config.RedisConfig{Address: mr.Addr(), CacheTTL: 60000})
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestQuery_CachesFoundAnswers(t *testing.T) {
	mr, rc := newCache(t)
	var calls int32
	server := stubRegulations(t, &calls, http.StatusOK, `{"answer":"Beef requires CFIA certification.","sources":["CFIA.pdf"]}`)
	h := NewHandler(testConfig(server.URL), rc, logger.NewNoOpLogger())

	first, err := h.Query(context.Background(), question)
	require.NoError(t, err)
	second, err := h.Query(context.Background(), question)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.AnswerText(), second.AnswerText())
	assert.Equal(t, []string{"CFIA.pdf"}, second.Sources)

	key := h.cacheKey(question)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = h.Query(context.Background(), question)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQuery_DoesNotCacheEmptyAnswers(t *testing.T) {
	mr, rc := newCache(t)
	var calls int32
	server := stubRegulations(t, &calls, http.StatusOK, `{"answer":null}`)
	h := NewHandler(testConfig(server.URL), rc, logger.NewNoOpLogger())

	for i := 0; i < 2; i++ {
		_, err := h.Query(context.Background(), question)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, mr.Exists(h.cacheKey(question)))
}

func TestQuery_CacheDownStillAnswers(t *testing.T) {
	mr, rc := newCache(t)
	mr.Close()

	var calls int32
	server := stubRegulations(t, &calls, http.StatusOK, `{"answer":"Beef requires CFIA certification."}`)

	answer, err := NewHandler(testConfig(server.URL), rc, logger.NewNoOpLogger()).Query(context.Background(), question)
	require.NoError(t, err)
	assert.True(t, answer.HasAnswer())
}

func TestCacheKey_ScopedByAgent(t *testing.T) {
	a := NewHandler(testConfig("http://x"), nil, logger.NewNoOpLogger())
	cfg := testConfig("http://x")
	cfg.AIAgentID = "other-agent"
	b := NewHandler(cfg, nil, logger.NewNoOpLogger())

	assert.NotEqual(t, a.cacheKey(question), b.cacheKey(question))
	assert.Equal(t, a.cacheKey(question), a.cacheKey(question))
}
