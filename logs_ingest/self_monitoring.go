/* Copyright 2025 Dynatrace LLC. All rights reserved.
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at:
*
*	http://www.apache.org/licenses/LICENSE-2.0
*
* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and limitations
* under the License.
 */

package logs_ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

const (
	monitoringScope     = "https://monitoring.azure.com/.default"
	metricsNamespace    = "dynatrace_logs_self_monitoring"
	metricsBaseEndpoint = "https://%s.monitoring.azure.com%s/metrics"
)

// SelfMonitoring holds the counters describing one invocation's outcome.
// It is created at invocation start, passed by pointer through every stage
// (stages mutate counters, never replace the instance), flushed exactly
// once at invocation end and then discarded. It must never be shared
// between concurrent invocations.
type SelfMonitoring struct {
	ExecutionTime      time.Time
	ParsingErrors      int
	TooOldRecords      int
	TooLongContentSize []int
	ProcessingTime     time.Duration
	SendingTime        time.Duration
	PayloadSize        int // serialized bytes handed to the ingest endpoint
}

func NewSelfMonitoring() *SelfMonitoring {
	return &SelfMonitoring{ExecutionTime: time.Now().UTC()}
}

// LogData flushes the counters to the log sink.
func (m *SelfMonitoring) LogData(log logger.Logger) {
	log.Info(fmt.Sprintf(
		"Self monitoring: parsing_errors: %d, too_old_records: %d, too_long_content_size: %v, processing_time: %s, sending_time: %s, payload_size: %d",
		m.ParsingErrors, m.TooOldRecords, m.TooLongContentSize, m.ProcessingTime, m.SendingTime, m.PayloadSize))
}

// metricSeries is one Azure Monitor custom metric data point.
type metricSeries struct {
	name          string
	min, max, sum float64
	count         int
}

func (m *SelfMonitoring) timeSeries() []metricSeries {
	series := []metricSeries{
		single("parsing_errors", float64(m.ParsingErrors)),
		single("too_old_records", float64(m.TooOldRecords)),
		single("processing_time_ms", float64(m.ProcessingTime.Milliseconds())),
		single("sending_time_ms", float64(m.SendingTime.Milliseconds())),
		single("log_ingest_payload_size", float64(m.PayloadSize)),
	}
	if len(m.TooLongContentSize) > 0 {
		s := metricSeries{name: "too_long_content_size", min: float64(m.TooLongContentSize[0]), max: float64(m.TooLongContentSize[0])}
		for _, size := range m.TooLongContentSize {
			v := float64(size)
			if v < s.min {
				s.min = v
			}
			if v > s.max {
				s.max = v
			}
			s.sum += v
			s.count++
		}
		series = append(series, s)
	}
	return series
}

func single(name string, value float64) metricSeries {
	return metricSeries{name: name, min: value, max: value, sum: value, count: 1}
}

// MetricsPusher publishes self-monitoring counters as Azure Monitor custom
// metrics against the forwarder's own resource, authenticated with the
// function's managed identity.
type MetricsPusher struct {
	credential azcore.TokenCredential
	endpoint   string
	httpClient *http.Client
	log        logger.Logger

	getToken func(ctx context.Context) (string, error)
}

// NewMetricsPusher builds a pusher for the configured forwarder resource.
// Requires RESOURCE_ID and WEBSITE_REGION, the metrics endpoint is regional
// and scoped to the emitting resource.
func NewMetricsPusher(cfg *Config, log logger.Logger) (*MetricsPusher, error) {
	if cfg.CloudLogForwarder == "" || cfg.MetricsRegion == "" {
		return nil, fmt.Errorf("self monitoring push needs %s and %s set", CloudLogForwarderVar, MetricsRegionVar)
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain Azure credential: %w", err)
	}

	pusher := &MetricsPusher{
		credential: credential,
		endpoint:   fmt.Sprintf(metricsBaseEndpoint, cfg.MetricsRegion, cfg.CloudLogForwarder),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
	pusher.getToken = func(ctx context.Context) (string, error) {
		token, err := pusher.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{monitoringScope}})
		if err != nil {
			return "", err
		}
		return token.Token, nil
	}
	return pusher, nil
}

// Push sends one request per metric. A failed metric is logged and skipped,
// self monitoring must never fail the invocation.
func (p *MetricsPusher) Push(ctx context.Context, monitoring *SelfMonitoring) error {
	token, err := p.getToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire monitoring token: %w", err)
	}

	for _, series := range monitoring.timeSeries() {
		if err := p.pushSeries(ctx, token, monitoring.ExecutionTime, series); err != nil {
			p.log.Error(fmt.Sprintf("Failed to push metric %s: %v", series.name, err))
		}
	}
	return nil
}

func (p *MetricsPusher) pushSeries(ctx context.Context, token string, at time.Time, series metricSeries) error {
	body, err := json.Marshal(map[string]any{
		"time": at.Format(time.RFC3339),
		"data": map[string]any{
			"baseData": map[string]any{
				"metric":    series.name,
				"namespace": metricsNamespace,
				"dimNames":  []string{},
				"series": []map[string]any{{
					"dimValues": []string{},
					"min":       series.min,
					"max":       series.max,
					"sum":       series.sum,
					"count":     series.count,
				}},
			},
		},
	})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Content-Type", "application/json")

	response, err := p.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("metrics endpoint returned %d: %s", response.StatusCode, detail)
	}
	return nil
}
