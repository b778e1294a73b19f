package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func baseConfig() *Config {
	config := &Config{}
	config.Exchange.InputFile = "orders.csv"
	config.Exchange.ReportFile = "execution_rep.csv"
	config.Exchange.Instruments = DefaultInstruments
	config.Exchange.Backend = "memory"
	config.Kafka.Sender = SenderKafkaGo
	return config
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"redis backend", func(c *Config) { c.Exchange.Backend = "redis" }, true},
		{"empty input file", func(c *Config) { c.Exchange.InputFile = "" }, false},
		{"empty report file", func(c *Config) { c.Exchange.ReportFile = "" }, false},
		{"no instruments", func(c *Config) { c.Exchange.Instruments = nil }, false},
		{"unknown backend", func(c *Config) { c.Exchange.Backend = "postgres" }, false},
		{"sarama sender", func(c *Config) { c.Kafka.Sender = SenderSarama }, true},
		{"unknown kafka sender", func(c *Config) { c.Kafka.Sender = "rabbitmq" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := baseConfig()
			tt.mutate(config)

			err := validate(config)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestYAMLOverlay(t *testing.T) {
	raw := `
exchange:
  input_file: /data/orders.csv
  instruments: [Rose, Tulip]
  backend: redis
redis:
  addr: redis.internal:6379
  db: 2
kafka:
  enabled: true
  broker_addr: kafka.internal:9092
  topic: executions
  sender: sarama
`

	config := baseConfig()
	require.NoError(t, yaml.Unmarshal([]byte(raw), config))

	assert.Equal(t, "/data/orders.csv", config.Exchange.InputFile)
	assert.Equal(t, []string{"Rose", "Tulip"}, config.Exchange.Instruments)
	assert.Equal(t, "redis", config.Exchange.Backend)
	assert.Equal(t, "redis.internal:6379", config.Redis.Addr)
	assert.Equal(t, 2, config.Redis.DB)
	assert.True(t, config.Kafka.Enabled)
	assert.Equal(t, "executions", config.Kafka.Topic)
	assert.Equal(t, SenderSarama, config.Kafka.Sender)

	// Fields the overlay does not mention keep their prior values.
	assert.Equal(t, "execution_rep.csv", config.Exchange.ReportFile)
}
