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
	"encoding/json"
	"fmt"
	"time"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

// BatchProcessor walks one invocation's events and assembles the outgoing
// batch. Processing is strictly sequential, per-record fault isolation and
// output ordering depend on it. The processor itself is long-lived and
// stateless across invocations; all per-invocation state (counters, log
// throttling) travels in as arguments.
//
// decodeBody and now are function fields so tests can spy on decode calls
// and pin the clock.
type BatchProcessor struct {
	cfg    *Config
	parser *RecordParser
	log    logger.Logger

	decodeBody func([]byte) (map[string]any, error)
	now        func() time.Time
}

func NewBatchProcessor(cfg *Config, parser *RecordParser, log logger.Logger) *BatchProcessor {
	return &BatchProcessor{
		cfg:        cfg,
		parser:     parser,
		log:        log,
		decodeBody: decodeEventBody,
		now:        time.Now,
	}
}

func decodeEventBody(body []byte) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &DecodeError{What: "event body", Err: err}
	}
	return decoded, nil
}

// Process produces the outgoing batch. One bad record never aborts the
// batch, one stale event never pays the body decode cost. throttle must be
// the calling invocation's own instance.
func (p *BatchProcessor) Process(events []RawEvent, monitoring *SelfMonitoring, throttle *logger.Throttle) []ParsedRecord {
	batch := make([]ParsedRecord, 0, len(events))

	for _, event := range events {
		if p.isTooOld(event.NormalizedTimestamp(), "event", monitoring, throttle) {
			continue
		}

		body, err := p.decodeBody(event.Body)
		if err != nil {
			monitoring.ParsingErrors++
			if throttle.Allow("event-body-decode") {
				p.log.Error(fmt.Sprintf("Failed to decode event body. The reason: %v", err))
			}
			continue
		}

		records, _ := body[recordsField].([]any)
		for _, raw := range records {
			fields, ok := raw.(map[string]any)
			if !ok {
				monitoring.ParsingErrors++
				if throttle.Allow("record-parsing") {
					p.log.Error(fmt.Sprintf("Failed to parse log record %v. The reason: not an object", raw))
				}
				continue
			}

			result := p.processRecord(RawRecord(fields), monitoring)
			switch result.status {
			case recordFailed:
				monitoring.ParsingErrors++
				if throttle.Allow("record-parsing") {
					p.log.Error(fmt.Sprintf("Failed to parse log record %v. The reason: %v", fields, result.err))
				}
			case recordFiltered:
				// intentional exclusion, not a failure
			case recordKept:
				if p.isTooOld(result.record.Timestamp(), "record", monitoring, throttle) {
					continue
				}
				batch = append(batch, result.record)
			}
		}
	}
	return batch
}

// processRecord is the per-record fault boundary: property deserialization
// failures and parser failures both come back as a Failed outcome instead
// of escaping to the batch loop.
func (p *BatchProcessor) processRecord(record RawRecord, monitoring *SelfMonitoring) recordResult {
	if err := deserializeProperties(record); err != nil {
		return recordResult{status: recordFailed, err: err}
	}
	return p.parser.Parse(record, monitoring)
}
