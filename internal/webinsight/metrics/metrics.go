// Package metrics collects business metrics for the webinsight service.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds counters for analyses, queries and LLM usage. All methods
// are safe for concurrent use.
type Metrics struct {
	analysesTotal    uint64
	analysesDegraded uint64

	queriesTotal       uint64
	queriesCacheHits   uint64
	queriesCacheMisses uint64
	queriesErrors      uint64

	llmCallsTotal       uint64
	llmCallsErrors      uint64
	llmTokensPrompt     uint64
	llmTokensCompletion uint64

	llmDuration   float64
	llmDurationMu sync.Mutex

	startTime time.Time
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordAnalysis records a completed website analysis.
func (m *Metrics) RecordAnalysis(degraded bool) {
	atomic.AddUint64(&m.analysesTotal, 1)
	if degraded {
		atomic.AddUint64(&m.analysesDegraded, 1)
	}
}

// RecordQuery records a query outcome.
func (m *Metrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}
}

// RecordLLMCall records a chat completion call.
func (m *Metrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.llmDurationMu.Lock()
	m.llmDuration += duration.Seconds()
	m.llmDurationMu.Unlock()

	if promptTokens > 0 {
		atomic.AddUint64(&m.llmTokensPrompt, uint64(promptTokens))
	}
	if completionTokens > 0 {
		atomic.AddUint64(&m.llmTokensCompletion, uint64(completionTokens))
	}
}

// Stats returns a snapshot of all counters.
func (m *Metrics) Stats() map[string]any {
	m.llmDurationMu.Lock()
	llmDuration := m.llmDuration
	m.llmDurationMu.Unlock()

	return map[string]any{
		"uptime_seconds":        time.Since(m.startTime).Seconds(),
		"analyses_total":        atomic.LoadUint64(&m.analysesTotal),
		"analyses_degraded":     atomic.LoadUint64(&m.analysesDegraded),
		"queries_total":         atomic.LoadUint64(&m.queriesTotal),
		"queries_cache_hits":    atomic.LoadUint64(&m.queriesCacheHits),
		"queries_cache_misses":  atomic.LoadUint64(&m.queriesCacheMisses),
		"queries_errors":        atomic.LoadUint64(&m.queriesErrors),
		"llm_calls_total":       atomic.LoadUint64(&m.llmCallsTotal),
		"llm_calls_errors":      atomic.LoadUint64(&m.llmCallsErrors),
		"llm_duration_seconds":  llmDuration,
		"llm_tokens_prompt":     atomic.LoadUint64(&m.llmTokensPrompt),
		"llm_tokens_completion": atomic.LoadUint64(&m.llmTokensCompletion),
	}
}

// Reset zeroes all counters. Intended for tests.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.analysesTotal, 0)
	atomic.StoreUint64(&m.analysesDegraded, 0)
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesCacheMisses, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.llmTokensPrompt, 0)
	atomic.StoreUint64(&m.llmTokensCompletion, 0)

	m.llmDurationMu.Lock()
	m.llmDuration = 0
	m.llmDurationMu.Unlock()
}
