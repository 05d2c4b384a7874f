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

// Environment variable names for log ingest configuration
const (
	DynatraceURLVar       = "DYNATRACE_URL"                                  // Log ingest endpoint base URL (required)
	DynatraceAccessKeyVar = "DYNATRACE_ACCESS_KEY"                           // Log ingest API token (required)
	MaxRecordAgeVar       = "DYNATRACE_LOG_INGEST_MAX_RECORD_AGE"            // Max record age in seconds
	AttributeValueMaxVar  = "DYNATRACE_LOG_INGEST_ATTRIBUTE_VALUE_MAX_LENGTH" // Max attribute value length in characters
	ContentMaxVar         = "DYNATRACE_LOG_INGEST_CONTENT_MAX_LENGTH"        // Max content length in characters
	CloudLogForwarderVar  = "RESOURCE_ID"                                    // Function app id, forwarded as cloud.log_forwarder
	SelfMonitoringVar     = "SELF_MONITORING_ENABLED"                        // Enable metric push to Azure Monitor
	FilterConfigVar       = "FILTER_CONFIG"                                  // Record drop filter definition
	MetadataRulesDirVar   = "METADATA_RULES_DIR"                             // Directory with metadata rule files
	MetricsRegionVar      = "WEBSITE_REGION"                                 // Region of the Azure Monitor metrics endpoint
)

// Default configuration values
const (
	DefaultMaxRecordAgeSeconds  = 86400 // Log ingest rejects anything older than one day
	DefaultAttributeValueLength = 250
	DefaultContentLength        = 8192
	DefaultMetadataRulesDir     = "rules"
)

// Attribute keys of the parsed record schema. Keys with an OpenTelemetry
// semantic convention equivalent use the semconv constant instead
// (cloud.provider, cloud.region, cloud.account.id).
const (
	TimestampKey         = "timestamp"
	ContentKey           = "content"
	SeverityKey          = "severity"
	CloudLogForwarderKey = "cloud.log_forwarder"
	LogSourceKey         = "log.source"
	ResourceIDKey        = "azure.resource.id"
	SubscriptionKey      = "azure.subscription"
	ResourceGroupKey     = "azure.resource.group"
	ResourceTypeKey      = "azure.resource.type"
	ResourceNameKey      = "azure.resource.name"
	CustomDeviceKey      = "dt.entity.custom_device"
)

const (
	cloudProviderAzure = "Azure"

	// Appended to content cut at the length ceiling. The exact literal is part
	// of the ingest contract, consumers match on it.
	contentTrimmedMarker = "[TRUNCATED]"

	// recordsField is the array holding log records inside an event body.
	recordsField = "records"
)

// azurePropertiesNames lists the known aliases of the provider "properties"
// sub-object, in lookup priority order.
var azurePropertiesNames = []string{"properties", "EventProperties"}
