package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorEmptySnapshot(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	assert.Nil(t, snap.LLMChat)
	assert.Nil(t, snap.DocumentRender)
	assert.Empty(t, snap.Counters)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestCollectorRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpDocumentRender, 10*time.Millisecond)
	c.RecordTiming(OpDocumentRender, 30*time.Millisecond)

	snap := c.Snapshot().DocumentRender
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.Count)
	assert.Equal(t, int64(40), snap.TotalTimeMs)
	assert.InDelta(t, 20.0, snap.AvgTimeMs, 0.001)
	assert.Equal(t, int64(10), snap.MinTimeMs)
	assert.Equal(t, int64(30), snap.MaxTimeMs)
	assert.Nil(t, snap.TotalInputTokens)
}

func TestCollectorRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMChat, 100*time.Millisecond, 50, 10)
	c.RecordLLMUsage(OpLLMChat, 300*time.Millisecond, 150, 30)

	snap := c.Snapshot().LLMChat
	require.NotNil(t, snap)
	require.NotNil(t, snap.TotalInputTokens)
	assert.Equal(t, int64(200), *snap.TotalInputTokens)
	assert.Equal(t, int64(40), *snap.TotalOutputTokens)
	assert.Equal(t, int64(50), *snap.MinInputTokens)
	assert.Equal(t, int64(150), *snap.MaxInputTokens)
	assert.InDelta(t, 20.0, *snap.AvgOutputTokens, 0.001)
}

func TestCollectorLLMWithoutTokens(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMGenerate, time.Millisecond, 0, 0)

	snap := c.Snapshot().LLMGenerate
	require.NotNil(t, snap)
	assert.Nil(t, snap.TotalInputTokens, "token stats are omitted when the provider reports none")
}

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc(CounterChatTurns)
		}()
	}
	wg.Wait()
	c.Inc(CounterDocumentsCreated)

	snap := c.Snapshot()
	assert.Equal(t, int64(100), snap.Counters[CounterChatTurns])
	assert.Equal(t, int64(1), snap.Counters[CounterDocumentsCreated])

	// Snapshot counters are a copy.
	snap.Counters[CounterChatTurns] = 0
	assert.Equal(t, int64(100), c.Snapshot().Counters[CounterChatTurns])
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.Inc(CounterChatTurns)
	c.RecordTiming(OpDocumentRender, time.Second)
	c.RecordLLMUsage(OpLLMChat, time.Second, 1, 1)
	assert.NotNil(t, c.Snapshot().Counters)
}
