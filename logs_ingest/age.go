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
	"fmt"
	"time"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

// ageMargin reserves time-in-flight: the ingest endpoint enforces a hard
// server-side age ceiling, so anything within 60s of the limit is already
// a lost cause by the time it arrives there.
const ageMargin = 60 * time.Second

// timestampLayouts are tried in order. Azure emits RFC 3339 with varying
// fraction precision plus an offset-less variant in Log Analytics exports.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", value)
}

// isTooOld decides whether a timestamp is too stale to forward. logPart
// labels the granularity ("event" or "record") for the log line.
//
// An empty timestamp keeps the item, age cannot be judged. An unparseable
// timestamp also keeps the item but surfaces the anomaly as a parsing
// error (fail open, never drop data we cannot judge).
func (p *BatchProcessor) isTooOld(timestamp, logPart string, monitoring *SelfMonitoring, throttle *logger.Throttle) bool {
	if timestamp == "" {
		return false
	}

	ts, err := parseTimestamp(timestamp)
	if err != nil {
		if throttle.Allow("timestamp-parsing") {
			p.log.Error(fmt.Sprintf("Failed to parse timestamp %s", timestamp))
		}
		monitoring.ParsingErrors++
		return false
	}

	if p.now().UTC().Sub(ts) > p.cfg.MaxRecordAge-ageMargin {
		if throttle.Allow("too-old-" + logPart) {
			p.log.Info(fmt.Sprintf("Skipping too old %s with timestamp '%s'", logPart, timestamp))
		}
		monitoring.TooOldRecords++
		return true
	}
	return false
}
