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

// severityFieldNames are the known spellings of the severity field across
// Azure record schemas, in lookup priority order.
var severityFieldNames = []string{SeverityKey, "level", "Level"}

// azureLevelNames maps the numeric level some diagnostic categories emit.
var azureLevelNames = map[int]string{
	1: "Critical",
	2: "Error",
	3: "Warning",
	4: "Informational",
}

// extractSeverity copies the record's severity into the parsed output.
// It tolerates any shape: missing fields, numeric levels, nested
// properties. It never fails, a record without severity is still valid.
func extractSeverity(record RawRecord, parsed ParsedRecord) {
	if setSeverityFrom(record, parsed) {
		return
	}
	if properties, ok := record.MapField("properties"); ok {
		setSeverityFrom(RawRecord(properties), parsed)
	}
}

func setSeverityFrom(fields RawRecord, parsed ParsedRecord) bool {
	for _, name := range severityFieldNames {
		value, ok := fields[name]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				parsed[SeverityKey] = v
				return true
			}
		case float64:
			if name, ok := azureLevelNames[int(v)]; ok {
				parsed[SeverityKey] = name
				return true
			}
		}
	}
	return false
}
