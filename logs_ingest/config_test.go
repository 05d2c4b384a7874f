package logs_ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(DynatraceURLVar, "https://example.live.dynatrace.com/")
	t.Setenv(DynatraceAccessKeyVar, "token")

	cfg := LoadConfig()

	assert.Equal(t, "https://example.live.dynatrace.com", cfg.IngestURL) // trailing slash trimmed
	assert.Equal(t, "token", cfg.AccessKey)
	assert.Equal(t, 24*time.Hour, cfg.MaxRecordAge)
	assert.Equal(t, DefaultAttributeValueLength, cfg.AttributeValueLen)
	assert.Equal(t, DefaultContentLength, cfg.ContentLen)
	assert.Equal(t, DefaultMetadataRulesDir, cfg.MetadataRulesDir)
	assert.False(t, cfg.SelfMonitoring)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(MaxRecordAgeVar, "3600")
	t.Setenv(AttributeValueMaxVar, "100")
	t.Setenv(ContentMaxVar, "4096")
	t.Setenv(SelfMonitoringVar, "TRUE")
	t.Setenv(CloudLogForwarderVar, "/subscriptions/abc/resourcegroups/rg/providers/microsoft.web/sites/forwarder")
	t.Setenv(FilterConfigVar, "FILTER.GLOBAL.MIN_LOG_LEVEL=Warning")
	t.Setenv(MetadataRulesDirVar, "custom-rules")
	t.Setenv(MetricsRegionVar, "westeurope")

	cfg := LoadConfig()

	assert.Equal(t, time.Hour, cfg.MaxRecordAge)
	assert.Equal(t, 100, cfg.AttributeValueLen)
	assert.Equal(t, 4096, cfg.ContentLen)
	assert.True(t, cfg.SelfMonitoring)
	assert.Equal(t, "/subscriptions/abc/resourcegroups/rg/providers/microsoft.web/sites/forwarder", cfg.CloudLogForwarder)
	assert.Equal(t, "FILTER.GLOBAL.MIN_LOG_LEVEL=Warning", cfg.FilterConfig)
	assert.Equal(t, "custom-rules", cfg.MetadataRulesDir)
	assert.Equal(t, "westeurope", cfg.MetricsRegion)
}

func TestLoadConfigRejectsInvalidNumbers(t *testing.T) {
	t.Setenv(MaxRecordAgeVar, "not-a-number")
	t.Setenv(AttributeValueMaxVar, "-5")
	t.Setenv(ContentMaxVar, "0")

	cfg := LoadConfig()

	assert.Equal(t, 24*time.Hour, cfg.MaxRecordAge)
	assert.Equal(t, DefaultAttributeValueLength, cfg.AttributeValueLen)
	assert.Equal(t, DefaultContentLength, cfg.ContentLen)
}

func TestValidateRequired(t *testing.T) {
	cfg := &Config{IngestURL: "https://example.live.dynatrace.com", AccessKey: "token"}
	assert.NoError(t, cfg.ValidateRequired())

	cfg = &Config{}
	err := cfg.ValidateRequired()
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, []string{DynatraceURLVar, DynatraceAccessKeyVar}, configErr.Missing)
	assert.Contains(t, err.Error(), "application settings")
}
