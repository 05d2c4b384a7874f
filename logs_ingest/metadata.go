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
	"os"
	"path/filepath"
	"strings"

	semconv "go.opentelemetry.io/collector/semconv/v1.5.0"
	"gopkg.in/yaml.v3"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

// timestampFieldNames are the known spellings of the record timestamp, in
// lookup priority order.
var timestampFieldNames = []string{"time", "timeStamp", "timestamp"}

// MetadataRule enriches records of one resource type and/or category with
// additional attributes. Rules live in YAML files loaded once at startup:
//
//	name: api-management
//	source:
//	  resource_type: MICROSOFT.APIMANAGEMENT/SERVICE
//	  category: gatewaylogs
//	attributes:
//	  - key: log.source
//	    value: Azure API Management       # literal
//	  - key: content
//	    source: properties.description    # dot path into the raw record
type MetadataRule struct {
	Name   string `yaml:"name"`
	Source struct {
		ResourceType string `yaml:"resource_type"` // upper-cased ARM type, empty matches any
		Category     string `yaml:"category"`      // lower-cased category, empty matches any
	} `yaml:"source"`
	Attributes []RuleAttribute `yaml:"attributes"`
}

type RuleAttribute struct {
	Key    string `yaml:"key"`
	Value  string `yaml:"value,omitempty"`
	Source string `yaml:"source,omitempty"`
}

// MetadataEngine applies a built-in default rule plus the first matching
// configured rule to every record.
type MetadataEngine struct {
	rules []MetadataRule
	log   logger.Logger
}

// NewMetadataEngine loads all *.yaml rule files from dir. A missing
// directory means no custom rules. Unreadable or malformed files are
// logged and skipped so one broken rule never takes the forwarder down.
func NewMetadataEngine(dir string, log logger.Logger) *MetadataEngine {
	engine := &MetadataEngine{log: log}
	if dir == "" {
		return engine
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		log.Error(fmt.Sprintf("Failed to list metadata rules in %s: %v", dir, err))
		return engine
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error(fmt.Sprintf("Failed to read metadata rule file %s: %v", path, err))
			continue
		}
		var rule MetadataRule
		if err := yaml.Unmarshal(data, &rule); err != nil {
			log.Error(fmt.Sprintf("Failed to parse metadata rule file %s: %v", path, err))
			continue
		}
		engine.rules = append(engine.rules, rule)
	}
	if len(engine.rules) > 0 {
		log.Info(fmt.Sprintf("Loaded %d metadata rules from %s", len(engine.rules), dir))
	}
	return engine
}

// Apply enriches the parsed record from the raw one. The default rule runs
// first (timestamp, content, log.source, cloud.region), then the first
// matching configured rule, whose attributes may override the defaults.
func (e *MetadataEngine) Apply(record RawRecord, parsed ParsedRecord) error {
	if err := e.applyDefaults(record, parsed); err != nil {
		return err
	}

	category := strings.ToLower(record.StringOr("category", ""))
	resourceType, _ := parsed[ResourceTypeKey].(string)
	for _, rule := range e.rules {
		if !rule.matches(resourceType, category) {
			continue
		}
		for _, attribute := range rule.Attributes {
			if attribute.Value != "" {
				parsed[attribute.Key] = attribute.Value
				continue
			}
			if value, ok := fieldPath(record, attribute.Source); ok && truthy(value) {
				parsed[attribute.Key] = value
			}
		}
		break
	}
	return nil
}

func (e *MetadataEngine) applyDefaults(record RawRecord, parsed ParsedRecord) error {
	for _, name := range timestampFieldNames {
		if ts, ok := record.StringField(name); ok {
			parsed[TimestampKey] = ts
			break
		}
	}
	if location, ok := record.StringField("location"); ok {
		parsed[semconv.AttributeCloudRegion] = strings.ToLower(location)
	}
	if category, ok := record.StringField("category"); ok {
		parsed[LogSourceKey] = category
	}

	if content, ok := fieldPath(record, "properties.description"); ok && truthy(content) {
		parsed[ContentKey] = content
		return nil
	}
	if content, ok := fieldPath(record, "properties.message"); ok && truthy(content) {
		parsed[ContentKey] = content
		return nil
	}
	// no message-bearing field known for this record shape, forward it whole
	encoded, err := json.Marshal(map[string]any(record))
	if err != nil {
		return fmt.Errorf("failed to serialize record content: %w", err)
	}
	parsed[ContentKey] = string(encoded)
	return nil
}

func (r MetadataRule) matches(resourceType, category string) bool {
	if r.Source.ResourceType == "" && r.Source.Category == "" {
		return false
	}
	if r.Source.ResourceType != "" && !strings.EqualFold(r.Source.ResourceType, resourceType) {
		return false
	}
	if r.Source.Category != "" && !strings.EqualFold(r.Source.Category, category) {
		return false
	}
	return true
}

// fieldPath resolves a dot-separated path against the raw record.
func fieldPath(record RawRecord, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = map[string]any(record)
	for _, part := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
