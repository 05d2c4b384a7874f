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
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// inferMonitoredEntityID derives a stable monitored-entity identifier for
// records that carry an Azure resource id. The id is an md5 of the
// lower-cased resource id plus the lower-cased category, so the same
// resource emitting the same category always maps to the same entity.
// Records without a resource id get no entity attribute.
func inferMonitoredEntityID(category string, parsed ParsedRecord) {
	resourceID, ok := parsed[ResourceIDKey].(string)
	if !ok || resourceID == "" {
		return
	}
	seed := strings.ToLower(resourceID)
	if category != "" {
		seed += "\n" + category
	}
	sum := md5.Sum([]byte(seed))
	parsed[CustomDeviceKey] = "CUSTOM_DEVICE-" + strings.ToUpper(hex.EncodeToString(sum[:8]))
}
