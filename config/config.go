package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/florex-io/florex/pkg/db/queue"
	"gopkg.in/yaml.v3"
)

// DefaultInstruments is the tradable set used when the config file names none.
var DefaultInstruments = []string{"Rose", "Lavender", "Lotus", "Tulip", "Orchid"}

// Kafka sender implementations selectable via kafka.sender.
const (
	SenderKafkaGo = "kafka-go"
	SenderSarama  = "sarama"
)

// Config represents the application configuration
type Config struct {
	Exchange struct {
		InputFile   string   `yaml:"input_file"`
		ReportFile  string   `yaml:"report_file"`
		Instruments []string `yaml:"instruments"`
		Backend     string   `yaml:"backend"`
		LogLevel    string   `yaml:"log_level"`
		LogFormat   string   `yaml:"log_format"`
	} `yaml:"exchange"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
		Sender     string `yaml:"sender"`
	} `yaml:"kafka"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	inputFile  = flag.String("input", "orders.csv", "Path to the order intent CSV")
	reportFile = flag.String("report", "execution_rep.csv", "Path to the execution report CSV")
	backend    = flag.String("backend", "memory", "Book storage backend: memory, redis")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Exchange.InputFile = *inputFile
	config.Exchange.ReportFile = *reportFile
	config.Exchange.Instruments = DefaultInstruments
	config.Exchange.Backend = *backend
	config.Exchange.LogLevel = *logLevel
	config.Exchange.LogFormat = *logFormat
	config.Redis.Addr = "localhost:6379"
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "florex-executions"
	config.Kafka.Sender = SenderKafkaGo

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	// Push Kafka settings into the queue package so pooled senders and the
	// feed consumer pick them up.
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.Topic)

	return config, nil
}

func validate(config *Config) error {
	if config.Exchange.InputFile == "" {
		return fmt.Errorf("input file must not be empty")
	}
	if config.Exchange.ReportFile == "" {
		return fmt.Errorf("report file must not be empty")
	}
	if len(config.Exchange.Instruments) == 0 {
		return fmt.Errorf("at least one tradable instrument is required")
	}
	switch config.Exchange.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown backend %q", config.Exchange.Backend)
	}
	switch config.Kafka.Sender {
	case SenderKafkaGo, SenderSarama:
	default:
		return fmt.Errorf("unknown kafka sender %q", config.Kafka.Sender)
	}
	return nil
}
