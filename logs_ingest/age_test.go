package logs_ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTooOld(t *testing.T) {
	testCases := []struct {
		name          string
		timestamp     string
		tooOld        bool
		tooOldRecords int
		parsingErrors int
	}{
		{
			name:      "empty timestamp is kept",
			timestamp: "",
		},
		{
			name:      "recent timestamp is kept",
			timestamp: fixedNow.Add(-time.Hour).Format(time.RFC3339),
		},
		{
			name:          "timestamp beyond the limit is dropped",
			timestamp:     fixedNow.Add(-25 * time.Hour).Format(time.RFC3339),
			tooOld:        true,
			tooOldRecords: 1,
		},
		{
			name:          "timestamp just past the margin is dropped",
			timestamp:     fixedNow.Add(-(24*time.Hour - 59*time.Second)).Format(time.RFC3339),
			tooOld:        true,
			tooOldRecords: 1,
		},
		{
			name:      "timestamp exactly at the margin is kept",
			timestamp: fixedNow.Add(-(24*time.Hour - 60*time.Second)).Format(time.RFC3339),
		},
		{
			name:          "unparseable timestamp fails open",
			timestamp:     "not a timestamp",
			parsingErrors: 1,
		},
		{
			name:      "offset-less timestamp is parsed",
			timestamp: fixedNow.Add(-time.Hour).Format("2006-01-02T15:04:05"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			processor := testProcessor(testConfig())
			monitoring := NewSelfMonitoring()

			tooOld := processor.isTooOld(tc.timestamp, "record", monitoring, testThrottle())

			assert.Equal(t, tc.tooOld, tooOld)
			assert.Equal(t, tc.tooOldRecords, monitoring.TooOldRecords)
			assert.Equal(t, tc.parsingErrors, monitoring.ParsingErrors)
		})
	}
}

func TestIsTooOldCountsOncePerCall(t *testing.T) {
	processor := testProcessor(testConfig())
	monitoring := NewSelfMonitoring()
	stale := fixedNow.Add(-48 * time.Hour).Format(time.RFC3339)

	processor.isTooOld(stale, "event", monitoring, testThrottle())
	processor.isTooOld(stale, "record", monitoring, testThrottle())

	assert.Equal(t, 2, monitoring.TooOldRecords)
}
