package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logs_ingest"
)

// logProcessor is the seam between the event-delivery surface and the
// pipeline, tests plug in a recorder here.
type logProcessor interface {
	ProcessLogs(ctx context.Context, events []logs_ingest.RawEvent) error
}

// invokeRequest is the Azure Functions custom handler invocation payload.
// For an Event Hub trigger with cardinality "many", Data holds the array of
// event bodies under the trigger's binding name and Metadata carries the
// per-event enqueue times in EnqueuedTimeUtcArray.
type invokeRequest struct {
	Data     map[string]json.RawMessage `json:"Data"`
	Metadata map[string]json.RawMessage `json:"Metadata"`
}

type invokeResponse struct {
	Outputs     map[string]any `json:"Outputs"`
	Logs        []string       `json:"Logs,omitempty"`
	ReturnValue any            `json:"ReturnValue,omitempty"`
}

const eventsBindingName = "events"

func newHandler(processor logProcessor, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		events, err := decodeInvocation(body)
		if err != nil {
			log.Error("Failed to decode invocation payload: ", err.Error())
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := processor.ProcessLogs(r.Context(), events); err != nil {
			// the host runtime reports this invocation as failed
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(invokeResponse{Outputs: map[string]any{}})
	})
	return mux
}

// decodeInvocation turns the custom-handler payload into raw events. Event
// bodies arrive either as JSON strings (the usual string dataType) or as
// embedded objects; both are accepted.
func decodeInvocation(payload []byte) ([]logs_ingest.RawEvent, error) {
	var request invokeRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, fmt.Errorf("invalid invocation payload: %w", err)
	}

	binding, ok := request.Data[eventsBindingName]
	if !ok {
		return nil, fmt.Errorf("invocation payload has no %q binding", eventsBindingName)
	}

	var rawBodies []json.RawMessage
	if err := json.Unmarshal(binding, &rawBodies); err != nil {
		// cardinality "one" delivers a single body instead of an array
		rawBodies = []json.RawMessage{binding}
	}

	enqueuedTimes := decodeEnqueuedTimes(request.Metadata)

	events := make([]logs_ingest.RawEvent, 0, len(rawBodies))
	for i, raw := range rawBodies {
		event := logs_ingest.RawEvent{Body: eventBody(raw)}
		if i < len(enqueuedTimes) {
			event.EnqueuedTime = enqueuedTimes[i]
		}
		events = append(events, event)
	}
	return events, nil
}

func eventBody(raw json.RawMessage) []byte {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []byte(asString)
	}
	return raw
}

func decodeEnqueuedTimes(metadata map[string]json.RawMessage) []time.Time {
	raw, ok := metadata["EnqueuedTimeUtcArray"]
	if !ok {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}

	times := make([]time.Time, len(values))
	for i, value := range values {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if ts, err := time.Parse(layout, value); err == nil {
				times[i] = ts
				break
			}
		}
	}
	return times
}
