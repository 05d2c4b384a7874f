package logs_ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

func TestTimeSeries(t *testing.T) {
	monitoring := &SelfMonitoring{
		ParsingErrors:  3,
		TooOldRecords:  1,
		ProcessingTime: 1500 * time.Millisecond,
		SendingTime:    250 * time.Millisecond,
		PayloadSize:    4096,
	}

	series := monitoring.timeSeries()
	byName := map[string]metricSeries{}
	for _, s := range series {
		byName[s.name] = s
	}

	assert.Equal(t, float64(3), byName["parsing_errors"].sum)
	assert.Equal(t, float64(1), byName["too_old_records"].sum)
	assert.Equal(t, float64(1500), byName["processing_time_ms"].sum)
	assert.Equal(t, float64(250), byName["sending_time_ms"].sum)
	assert.Equal(t, float64(4096), byName["log_ingest_payload_size"].sum)
	assert.NotContains(t, byName, "too_long_content_size")
}

func TestTimeSeriesAggregatesContentSizes(t *testing.T) {
	monitoring := &SelfMonitoring{TooLongContentSize: []int{9000, 12000, 10000}}

	series := monitoring.timeSeries()
	last := series[len(series)-1]

	require.Equal(t, "too_long_content_size", last.name)
	assert.Equal(t, float64(9000), last.min)
	assert.Equal(t, float64(12000), last.max)
	assert.Equal(t, float64(31000), last.sum)
	assert.Equal(t, 3, last.count)
}

func TestPushSendsOneRequestPerMetric(t *testing.T) {
	var mu sync.Mutex
	var metrics []string
	var authorization string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Time string `json:"time"`
			Data struct {
				BaseData struct {
					Metric    string `json:"metric"`
					Namespace string `json:"namespace"`
					Series    []struct {
						Sum   float64 `json:"sum"`
						Count int     `json:"count"`
					} `json:"series"`
				} `json:"baseData"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "dynatrace_logs_self_monitoring", payload.Data.BaseData.Namespace)
		require.Len(t, payload.Data.BaseData.Series, 1)
		mu.Lock()
		metrics = append(metrics, payload.Data.BaseData.Metric)
		authorization = r.Header.Get("Authorization")
		mu.Unlock()
	}))
	defer server.Close()

	pusher := &MetricsPusher{
		endpoint:   server.URL,
		httpClient: server.Client(),
		log:        logger.NewLogger("test"),
		getToken: func(ctx context.Context) (string, error) {
			return "stub-token", nil
		},
	}

	monitoring := &SelfMonitoring{ExecutionTime: fixedNow, ParsingErrors: 2}
	require.NoError(t, pusher.Push(context.Background(), monitoring))

	assert.Equal(t, "Bearer stub-token", authorization)
	assert.ElementsMatch(t, metrics, []string{
		"parsing_errors", "too_old_records", "processing_time_ms", "sending_time_ms", "log_ingest_payload_size",
	})
}

func TestPushContinuesAfterFailedMetric(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	pusher := &MetricsPusher{
		endpoint:   server.URL,
		httpClient: server.Client(),
		log:        logger.NewLogger("test"),
		getToken: func(ctx context.Context) (string, error) {
			return "stub-token", nil
		},
	}

	require.NoError(t, pusher.Push(context.Background(), NewSelfMonitoring()))
	assert.Equal(t, 5, requestCount)
}

func TestPushFailsWithoutToken(t *testing.T) {
	pusher := &MetricsPusher{
		log: logger.NewLogger("test"),
		getToken: func(ctx context.Context) (string, error) {
			return "", context.DeadlineExceeded
		},
	}

	err := pusher.Push(context.Background(), NewSelfMonitoring())
	assert.ErrorContains(t, err, "failed to acquire monitoring token")
}

func TestNewMetricsPusherRequiresResourceIDAndRegion(t *testing.T) {
	cfg := testConfig()
	cfg.SelfMonitoring = true

	_, err := NewMetricsPusher(cfg, logger.NewLogger("test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), CloudLogForwarderVar)
	assert.Contains(t, err.Error(), MetricsRegionVar)
}
