package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordAnalysis(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordAnalysis(false)
	m.RecordAnalysis(true)
	m.RecordAnalysis(false)

	stats := m.Stats()
	assert.Equal(t, uint64(3), stats["analyses_total"])
	assert.Equal(t, uint64(1), stats["analyses_degraded"])
}

func TestMetricsRecordQuery(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordQuery(true, nil)
	m.RecordQuery(false, nil)
	m.RecordQuery(false, errors.New("boom"))

	stats := m.Stats()
	assert.Equal(t, uint64(3), stats["queries_total"])
	assert.Equal(t, uint64(1), stats["queries_cache_hits"])
	assert.Equal(t, uint64(1), stats["queries_cache_misses"])
	assert.Equal(t, uint64(1), stats["queries_errors"])
}

func TestMetricsRecordLLMCall(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordLLMCall(100*time.Millisecond, 50, 20, nil)
	m.RecordLLMCall(0, 0, 0, errors.New("timeout"))

	stats := m.Stats()
	assert.Equal(t, uint64(2), stats["llm_calls_total"])
	assert.Equal(t, uint64(1), stats["llm_calls_errors"])
	assert.Equal(t, uint64(50), stats["llm_tokens_prompt"])
	assert.Equal(t, uint64(20), stats["llm_tokens_completion"])
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := Get()
	m.Reset()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordQuery(false, nil)
			m.RecordAnalysis(false)
		}()
	}
	wg.Wait()

	stats := m.Stats()
	assert.Equal(t, uint64(50), stats["queries_total"])
	assert.Equal(t, uint64(50), stats["analyses_total"])
}
