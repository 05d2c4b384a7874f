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
	"strings"

	semconv "go.opentelemetry.io/collector/semconv/v1.5.0"
)

// RecordParser turns one raw record into a normalized one, or decides it
// must be dropped. Collaborators are function fields so tests can replace
// them with spies.
type RecordParser struct {
	cfg      *Config
	filter   *LogFilter
	metadata *MetadataEngine

	extractSeverity   func(RawRecord, ParsedRecord)
	extractResourceID func(ParsedRecord, string)
	inferEntityID     func(string, ParsedRecord)
	shouldFilterOut   func(ParsedRecord) bool
	applyMetadata     func(RawRecord, ParsedRecord) error
}

func NewRecordParser(cfg *Config, filter *LogFilter, metadata *MetadataEngine) *RecordParser {
	parser := &RecordParser{cfg: cfg, filter: filter, metadata: metadata}
	parser.extractSeverity = extractSeverity
	parser.extractResourceID = extractResourceIDAttributes
	parser.inferEntityID = inferMonitoredEntityID
	parser.shouldFilterOut = filter.ShouldFilterOutRecord
	parser.applyMetadata = metadata.Apply
	return parser
}

// Parse runs the per-record pipeline. Step order matters: severity and
// resource identity must exist before the drop filter sees the record, and
// sanitization runs last over the fully enriched output. A filtered record
// returns before enrichment and sanitization, so it never shows up in the
// oversize-content accounting.
func (p *RecordParser) Parse(record RawRecord, monitoring *SelfMonitoring) recordResult {
	parsed := ParsedRecord{semconv.AttributeCloudProvider: cloudProviderAzure}

	p.extractSeverity(record, parsed)

	if p.cfg.CloudLogForwarder != "" {
		parsed[CloudLogForwarderKey] = p.cfg.CloudLogForwarder
	}

	// Two known schema variants of the same concept: diagnostic settings
	// emit resourceId, Log Analytics exports emit _ResourceId. Neither
	// present is fine, the record just gets no resource attributes.
	if resourceID, ok := record.StringField("resourceId"); ok {
		p.extractResourceID(parsed, resourceID)
	} else if resourceID, ok := record.StringField("_ResourceId"); ok {
		p.extractResourceID(parsed, resourceID)
	}

	if p.shouldFilterOut(parsed) {
		return recordResult{status: recordFiltered}
	}

	if err := p.applyMetadata(record, parsed); err != nil {
		return recordResult{status: recordFailed, err: err}
	}
	category := strings.ToLower(record.StringOr("category", ""))
	p.inferEntityID(category, parsed)

	sanitizeAttributes(parsed, p.cfg.AttributeValueLen, p.cfg.ContentLen, monitoring)

	return recordResult{status: recordKept, record: parsed}
}
