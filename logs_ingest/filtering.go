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
	"strings"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

const (
	globalMinLevelKey  = "FILTER.GLOBAL.MIN_LOG_LEVEL"
	resourceTypePrefix = "FILTER.RESOURCE_TYPE."
	resourceTypeSuffix = ".MIN_LOG_LEVEL"
)

// severityRanks orders the severities the filter can threshold on.
// Unknown severities rank 0 and are always kept, filtering fails open.
var severityRanks = map[string]int{
	"trace":         1,
	"verbose":       1,
	"debug":         1,
	"informational": 2,
	"info":          2,
	"warning":       3,
	"warn":          3,
	"error":         4,
	"critical":      5,
}

// LogFilter drops records below a configured minimum severity, globally or
// per Azure resource type. Filtered records are an intentional exclusion,
// never counted as failures.
//
// The filter is defined by the FILTER_CONFIG variable, semicolon-separated:
//
//	FILTER.GLOBAL.MIN_LOG_LEVEL=Warning;FILTER.RESOURCE_TYPE.MICROSOFT.WEB/SITES.MIN_LOG_LEVEL=Error
type LogFilter struct {
	globalMinRank     int
	resourceTypeRanks map[string]int
}

// NewLogFilter compiles the filter definition. Malformed entries are
// logged and skipped so one typo never disables the whole filter.
func NewLogFilter(filterConfig string, log logger.Logger) *LogFilter {
	filter := &LogFilter{resourceTypeRanks: make(map[string]int)}

	for _, entry := range strings.Split(filterConfig, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, found := strings.Cut(entry, "=")
		rank, known := severityRanks[strings.ToLower(strings.TrimSpace(value))]
		if !found || !known {
			log.Error(fmt.Sprintf("Ignoring invalid filter entry '%s'", entry))
			continue
		}

		switch {
		case key == globalMinLevelKey:
			filter.globalMinRank = rank
		case strings.HasPrefix(key, resourceTypePrefix) && strings.HasSuffix(key, resourceTypeSuffix):
			resourceType := strings.TrimSuffix(strings.TrimPrefix(key, resourceTypePrefix), resourceTypeSuffix)
			if resourceType == "" {
				log.Error(fmt.Sprintf("Ignoring invalid filter entry '%s'", entry))
				continue
			}
			filter.resourceTypeRanks[strings.ToUpper(resourceType)] = rank
		default:
			log.Error(fmt.Sprintf("Ignoring unknown filter key '%s'", key))
		}
	}
	return filter
}

// ShouldFilterOutRecord reports whether the partially built record falls
// below the applicable severity threshold.
func (f *LogFilter) ShouldFilterOutRecord(parsed ParsedRecord) bool {
	minRank := f.globalMinRank
	if resourceType, ok := parsed[ResourceTypeKey].(string); ok {
		if rank, ok := f.resourceTypeRanks[resourceType]; ok {
			minRank = rank
		}
	}
	if minRank == 0 {
		return false
	}

	severity, _ := parsed[SeverityKey].(string)
	rank, known := severityRanks[strings.ToLower(severity)]
	if !known {
		return false
	}
	return rank < minRank
}
