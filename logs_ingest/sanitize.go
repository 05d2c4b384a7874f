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
)

// sanitizeExempt attributes are never truncated by the generic attribute
// rule. content has its own larger ceiling, severity and timestamp are part
// of the ingest envelope.
var sanitizeExempt = map[string]bool{
	ContentKey:   true,
	SeverityKey:  true,
	TimestampKey: true,
}

// sanitizeAttributes enforces the per-attribute and content length ceilings
// on a fully enriched record. Cuts are hard character-count cuts (runes,
// not bytes), the exact cut point is part of the ingest contract.
func sanitizeAttributes(record ParsedRecord, attributeLimit, contentLimit int, monitoring *SelfMonitoring) {
	for key, value := range record {
		if sanitizeExempt[key] || !truthy(value) {
			continue
		}
		record[key] = truncate(stringify(value), attributeLimit)
	}

	content, ok := record[ContentKey]
	if !ok || !truthy(content) {
		return
	}
	text, isString := content.(string)
	if !isString {
		text = stringify(content)
		record[ContentKey] = text
	}
	if runes := []rune(text); len(runes) > contentLimit {
		monitoring.TooLongContentSize = append(monitoring.TooLongContentSize, len(runes))
		trimmed := contentLimit - len(contentTrimmedMarker)
		record[ContentKey] = string(runes[:trimmed]) + contentTrimmedMarker
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

// stringify coerces a JSON-decoded value to its string form: objects and
// arrays re-encode as JSON, scalars print plainly.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truthy mirrors the drop-empty semantics of the ingest schema: empty
// strings, zero numbers, false, nil and empty collections are not emitted.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}
