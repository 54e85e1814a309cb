package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RecordAccumulatesCount(t *testing.T) {
	// Arrange
	tr := New()

	// Act
	tr.Record(10)
	tr.Record(20)
	stats := tr.Stats()

	// Assert
	assert.EqualValues(t, 2, stats.MessagesProcessed)
	assert.InDelta(t, 15, stats.AvgLatencyMs, 0.001)
}

func TestTracker_WindowEvictsOldestBeyondCapacity(t *testing.T) {
	// Arrange
	tr := NewWithWindow(3)

	// Act: push 5 values into a window of size 3
	tr.Record(1)
	tr.Record(2)
	tr.Record(3)
	tr.Record(4)
	tr.Record(5)
	stats := tr.Stats()

	// Assert: recent average should reflect only the last 3 values (3,4,5)
	assert.InDelta(t, 4, stats.RecentAvgLatencyMs, 0.001)
	assert.EqualValues(t, 5, stats.MessagesProcessed)
}

func TestTracker_ShouldLogFiresOnInterval(t *testing.T) {
	// Arrange
	tr := New()

	// Act / Assert
	for i := 0; i < 9; i++ {
		tr.Record(1)
		_, ok := tr.ShouldLog(10)
		assert.False(t, ok)
	}
	tr.Record(1)
	_, ok := tr.ShouldLog(10)
	assert.True(t, ok)
}

func TestTracker_Reset(t *testing.T) {
	// Arrange
	tr := New()
	tr.Record(100)

	// Act
	tr.Reset()
	stats := tr.Stats()

	// Assert
	assert.EqualValues(t, 0, stats.MessagesProcessed)
}
