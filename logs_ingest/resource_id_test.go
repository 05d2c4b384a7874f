package logs_ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	semconv "go.opentelemetry.io/collector/semconv/v1.5.0"
)

func TestExtractResourceIDAttributes(t *testing.T) {
	parsed := ParsedRecord{}
	extractResourceIDAttributes(parsed,
		"/SUBSCRIPTIONS/69B51384-146C-4685-9DAB-5AE01877D7B8/RESOURCEGROUPS/LOGS-INGEST-RG/PROVIDERS/MICROSOFT.EVENTHUB/NAMESPACES/LOGS-INGEST-EH")

	assert.Equal(t,
		"/subscriptions/69b51384-146c-4685-9dab-5ae01877d7b8/resourcegroups/logs-ingest-rg/providers/microsoft.eventhub/namespaces/logs-ingest-eh",
		parsed[ResourceIDKey])
	assert.Equal(t, "69b51384-146c-4685-9dab-5ae01877d7b8", parsed[SubscriptionKey])
	assert.Equal(t, "69b51384-146c-4685-9dab-5ae01877d7b8", parsed[semconv.AttributeCloudAccountID])
	assert.Equal(t, "logs-ingest-rg", parsed[ResourceGroupKey])
	assert.Equal(t, "MICROSOFT.EVENTHUB/NAMESPACES", parsed[ResourceTypeKey])
	assert.Equal(t, "LOGS-INGEST-EH", parsed[ResourceNameKey])
}

func TestExtractResourceIDAttributesMalformed(t *testing.T) {
	testCases := []struct {
		name       string
		resourceID string
	}{
		{"bare id", "Not-An-ARM-Id"},
		{"subscription only", "/subscriptions/69b51384"},
		{"truncated providers segment", "/subscriptions/69b51384/resourceGroups/rg/providers/Microsoft.Web"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			parsed := ParsedRecord{}
			extractResourceIDAttributes(parsed, testCase.resourceID)

			assert.Equal(t, strings.ToLower(testCase.resourceID), parsed[ResourceIDKey])
			assert.NotContains(t, parsed, ResourceTypeKey)
			assert.NotContains(t, parsed, ResourceNameKey)
		})
	}
}

func TestExtractResourceIDAttributesEmptyIsNoOp(t *testing.T) {
	parsed := ParsedRecord{}
	extractResourceIDAttributes(parsed, "")
	assert.Empty(t, parsed)
}

func TestInferMonitoredEntityIDIsStable(t *testing.T) {
	first := ParsedRecord{ResourceIDKey: "/subscriptions/abc/resourcegroups/rg/providers/microsoft.web/sites/app"}
	second := ParsedRecord{ResourceIDKey: "/SUBSCRIPTIONS/ABC/RESOURCEGROUPS/RG/PROVIDERS/MICROSOFT.WEB/SITES/APP"}

	inferMonitoredEntityID("FunctionAppLogs", first)
	inferMonitoredEntityID("FunctionAppLogs", second)

	entityID, ok := first[CustomDeviceKey].(string)
	assert.True(t, ok)
	assert.Regexp(t, `^CUSTOM_DEVICE-[0-9A-F]{16}$`, entityID)
	assert.Equal(t, first[CustomDeviceKey], second[CustomDeviceKey])
}

func TestInferMonitoredEntityIDVariesByCategory(t *testing.T) {
	resourceID := "/subscriptions/abc/resourcegroups/rg/providers/microsoft.web/sites/app"
	withCategory := ParsedRecord{ResourceIDKey: resourceID}
	withoutCategory := ParsedRecord{ResourceIDKey: resourceID}

	inferMonitoredEntityID("FunctionAppLogs", withCategory)
	inferMonitoredEntityID("", withoutCategory)

	assert.NotEqual(t, withCategory[CustomDeviceKey], withoutCategory[CustomDeviceKey])
}

func TestInferMonitoredEntityIDSkipsRecordsWithoutResourceID(t *testing.T) {
	parsed := ParsedRecord{}
	inferMonitoredEntityID("AuditLogs", parsed)
	assert.NotContains(t, parsed, CustomDeviceKey)
}
