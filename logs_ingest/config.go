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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

var configLogger = logger.NewLogger("config")

// Config holds the immutable, environment-sourced configuration of the
// forwarder. It is read once at process start; required values are only
// verified at invocation start so that a misconfigured function still
// flushes self-monitoring data.
type Config struct {
	IngestURL         string // Log ingest endpoint base URL
	AccessKey         string // Log ingest API token
	MaxRecordAge      time.Duration
	AttributeValueLen int    // Max length of non-content attribute values, in characters
	ContentLen        int    // Max length of the content attribute, in characters
	CloudLogForwarder string // Identity of this forwarder, "" disables the attribute
	SelfMonitoring    bool
	FilterConfig      string
	MetadataRulesDir  string
	MetricsRegion     string // Region of the Azure Monitor metrics endpoint
}

// LoadConfig reads the forwarder configuration from environment variables.
//
// Environment variables read:
//   - DYNATRACE_URL: log ingest endpoint base URL (required at invocation time)
//   - DYNATRACE_ACCESS_KEY: log ingest API token (required at invocation time)
//   - DYNATRACE_LOG_INGEST_MAX_RECORD_AGE: max record age in seconds (default: 86400)
//   - DYNATRACE_LOG_INGEST_ATTRIBUTE_VALUE_MAX_LENGTH: attribute length cap (default: 250)
//   - DYNATRACE_LOG_INGEST_CONTENT_MAX_LENGTH: content length cap (default: 8192)
//   - RESOURCE_ID: function app id forwarded as cloud.log_forwarder (optional)
//   - SELF_MONITORING_ENABLED: "true" enables the Azure Monitor metric push
//   - FILTER_CONFIG: record drop filter definition (optional)
//   - METADATA_RULES_DIR: directory with metadata rule files (default: rules)
func LoadConfig() *Config {
	return &Config{
		IngestURL:         strings.TrimRight(os.Getenv(DynatraceURLVar), "/"),
		AccessKey:         os.Getenv(DynatraceAccessKeyVar),
		MaxRecordAge:      time.Duration(parseIntVar(MaxRecordAgeVar, DefaultMaxRecordAgeSeconds)) * time.Second,
		AttributeValueLen: parseIntVar(AttributeValueMaxVar, DefaultAttributeValueLength),
		ContentLen:        parseIntVar(ContentMaxVar, DefaultContentLength),
		CloudLogForwarder: os.Getenv(CloudLogForwarderVar),
		SelfMonitoring:    parseBoolVar(SelfMonitoringVar),
		FilterConfig:      os.Getenv(FilterConfigVar),
		MetadataRulesDir:  stringVarOr(MetadataRulesDirVar, DefaultMetadataRulesDir),
		MetricsRegion:     os.Getenv(MetricsRegionVar),
	}
}

// ValidateRequired checks the settings without which no invocation can run.
func (c *Config) ValidateRequired() error {
	var missing []string
	if c.IngestURL == "" {
		missing = append(missing, DynatraceURLVar)
	}
	if c.AccessKey == "" {
		missing = append(missing, DynatraceAccessKeyVar)
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// parseIntVar parses a positive integer environment variable, falling back
// to the default on absent, malformed or non-positive values.
func parseIntVar(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		configLogger.Error(fmt.Sprintf("%s: unable to parse '%s' as number, using default %d", name, raw, def))
		return def
	}
	if value <= 0 {
		configLogger.Error(fmt.Sprintf("%s can't be less than 1, got %d, using default %d", name, value, def))
		return def
	}
	return value
}

func parseBoolVar(name string) bool {
	return strings.EqualFold(os.Getenv(name), "true")
}

func stringVarOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
