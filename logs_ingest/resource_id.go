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

// extractResourceIDAttributes expands an ARM resource id of the form
//
//	/subscriptions/<sub>/resourceGroups/<group>/providers/<ns>/<type>/<name>[/...]
//
// into structured attributes. The id is lower-cased for stable matching
// (ARM ids are case-insensitive and casing varies between record sources),
// the resource type is upper-cased the way the rule engine keys on it.
// Malformed ids set only the raw id attribute, never an error.
func extractResourceIDAttributes(parsed ParsedRecord, resourceID string) {
	if resourceID == "" {
		return
	}
	parsed[ResourceIDKey] = strings.ToLower(resourceID)

	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	for i := 0; i+1 < len(parts); i += 2 {
		switch strings.ToLower(parts[i]) {
		case "subscriptions":
			parsed[SubscriptionKey] = strings.ToLower(parts[i+1])
			parsed[semconv.AttributeCloudAccountID] = strings.ToLower(parts[i+1])
		case "resourcegroups":
			parsed[ResourceGroupKey] = strings.ToLower(parts[i+1])
		case "providers":
			// providers/<ns>/<type>/<name>, not a key/value pair
			if i+3 < len(parts) {
				parsed[ResourceTypeKey] = strings.ToUpper(parts[i+1] + "/" + parts[i+2])
				parsed[ResourceNameKey] = parts[i+3]
			}
			return
		}
	}
}
