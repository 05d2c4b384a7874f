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
	"context"
	"fmt"
	"time"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

// Orchestrator is the top-level entry point for one invocation. It holds
// only invocation-independent state; everything invocation-scoped
// (self-monitoring, log throttling) is created inside ProcessLogs, which
// guarantees the monitoring flush on every exit path. A single
// Orchestrator serves concurrent invocations.
type Orchestrator struct {
	cfg       *Config
	processor *BatchProcessor
	log       logger.Logger

	send        func(context.Context, []ParsedRecord, *SelfMonitoring) error
	pushMetrics func(context.Context, *SelfMonitoring) error
}

// NewOrchestrator wires the full pipeline from configuration: filter,
// metadata engine, record parser, batch processor, ingest client and,
// when enabled, the metrics pusher.
func NewOrchestrator(cfg *Config, log logger.Logger) *Orchestrator {
	filter := NewLogFilter(cfg.FilterConfig, log)
	metadata := NewMetadataEngine(cfg.MetadataRulesDir, log)
	parser := NewRecordParser(cfg, filter, metadata)

	orchestrator := &Orchestrator{
		cfg:       cfg,
		processor: NewBatchProcessor(cfg, parser, log),
		log:       log,
	}
	orchestrator.send = NewLogsClient(cfg, log).Send

	if cfg.SelfMonitoring {
		pusher, err := NewMetricsPusher(cfg, log)
		if err != nil {
			log.Error(fmt.Sprintf("Self monitoring push disabled: %v", err))
		} else {
			orchestrator.pushMetrics = pusher.Push
		}
	}
	return orchestrator
}

// ProcessLogs runs one invocation over the delivered batch of events.
// Degraded processing (some records dropped) is never an invocation
// failure; only missing configuration, a send failure or an unexpected
// processing failure is. The self-monitoring flush runs on every exit
// path, including failed ones.
func (o *Orchestrator) ProcessLogs(ctx context.Context, events []RawEvent) (err error) {
	monitoring := NewSelfMonitoring()
	// invocation-scoped, the host runtime may run invocations concurrently
	throttle := logger.NewThrottle(10)
	defer func() {
		if err != nil {
			o.log.Error("Failed to process logs: ", err.Error())
		}
		monitoring.LogData(o.log)
		if o.cfg.SelfMonitoring && o.pushMetrics != nil {
			if pushErr := o.pushMetrics(ctx, monitoring); pushErr != nil {
				o.log.Error(fmt.Sprintf("Failed to push self monitoring metrics: %v", pushErr))
			}
		}
	}()

	if err := o.cfg.ValidateRequired(); err != nil {
		return err
	}

	start := time.Now()
	batch := o.processor.Process(events, monitoring, throttle)
	monitoring.ProcessingTime = time.Since(start)

	o.log.Info(fmt.Sprintf("Successfully parsed %d log records", len(batch)))
	for key, dropped := range throttle.Overflowed() {
		o.log.Info(fmt.Sprintf("Suppressed %d further log lines about %s", dropped, key))
	}

	if len(batch) == 0 {
		return nil
	}
	return o.send(ctx, batch, monitoring)
}
