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

import "encoding/json"

// deserializeProperties finds the first known alias of the provider
// "properties" sub-object on the record. Some resource types emit it as a
// JSON-encoded string instead of a nested object; those are parsed in place
// and stored under "properties". Nested objects are left untouched, a
// missing alias is a no-op. Malformed JSON is returned to the caller as a
// decode failure, the record boundary decides what to do with it.
func deserializeProperties(record RawRecord) error {
	name := ""
	for _, alias := range azurePropertiesNames {
		if _, ok := record[alias]; ok {
			name = alias
			break
		}
	}
	if name == "" {
		return nil
	}

	encoded, ok := record[name].(string)
	if !ok || encoded == "" {
		return nil
	}

	var properties map[string]any
	if err := json.Unmarshal([]byte(encoded), &properties); err != nil {
		return &DecodeError{What: "record properties", Err: err}
	}
	record["properties"] = properties
	return nil
}
