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
)

// RawEvent is one message delivered by the event stream: an opaque JSON body
// and, when the source supplies one, the enqueue time.
type RawEvent struct {
	Body         []byte
	EnqueuedTime time.Time // zero when the source carries no timestamp
}

// NormalizedTimestamp renders the enqueue time at second precision, UTC,
// with a trailing Z and no explicit offset. Returns "" for a zero time.
func (e RawEvent) NormalizedTimestamp() string {
	if e.EnqueuedTime.IsZero() {
		return ""
	}
	return e.EnqueuedTime.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05") + "Z"
}

// RawRecord is one log record in provider-specific schema. Fields may be
// missing or of unexpected type, accessors never assume shape.
type RawRecord map[string]any

// StringField returns the value under key if it is a non-empty string.
func (r RawRecord) StringField(key string) (string, bool) {
	v, ok := r[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// StringOr coerces the value under key to a string, or returns def when the
// key is absent or empty.
func (r RawRecord) StringOr(key, def string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return def
		}
		return s
	}
	return fmt.Sprintf("%v", v)
}

// MapField returns the value under key if it is a nested object.
func (r RawRecord) MapField(key string) (map[string]any, bool) {
	v, ok := r[key].(map[string]any)
	return v, ok
}

// ParsedRecord is the normalized vendor-neutral representation of a record.
// The key set is fixed by constants.go plus whatever the metadata rules
// contribute; values are coerced to strings at the sanitization boundary.
type ParsedRecord map[string]any

// Timestamp returns the record's own timestamp attribute, "" when unset.
func (p ParsedRecord) Timestamp() string {
	s, _ := p[TimestampKey].(string)
	return s
}

// MarshalBody serializes the record for the outgoing payload.
func (p ParsedRecord) MarshalBody() ([]byte, error) {
	return json.Marshal(map[string]any(p))
}

// recordStatus tags the outcome of the per-record pipeline. Filtered is an
// intentional exclusion and never counts as a failure; Failed increments
// parsing_errors exactly once in the batch loop.
type recordStatus int

const (
	recordKept recordStatus = iota
	recordFiltered
	recordFailed
)

type recordResult struct {
	status recordStatus
	record ParsedRecord
	err    error
}
