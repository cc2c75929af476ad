// Package metricsconfig loads and validates a JSON configuration document
// describing a metrics pipeline (cluster, flush interval, queue capacity,
// sample rate, outputs); cmd/cc-metrics-demo does not call it and is
// configured by flags only. Grounded on internal/config/validate.go
// for JSON Schema validation via github.com/santhosh-tekuri/jsonschema/v5,
// and on github.com/joho/godotenv for environment overrides — a direct
// dependency already present in the teacher's go.mod but, as far as the
// retrieved pack shows, never actually called anywhere in the teacher; this
// package is the first real call site for it, loading a .env file (if
// present) into the process environment before the config file is read.
package metricsconfig

import (
	"encoding/json"
	"fmt"
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"cluster": {"type": "string"},
		"flushInterval": {"type": "string"},
		"queueCapacity": {"type": "integer", "minimum": 1},
		"sampleRate": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
		"outputs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["kind"],
				"properties": {
					"kind": {"type": "string", "enum": ["stdout", "logout", "graphite", "statsd", "promtext", "nats", "influxline", "avro", "sql", "s3"]},
					"address": {"type": "string"},
					"prefix": {"type": "string"}
				}
			}
		}
	},
	"required": ["cluster", "outputs"]
}`

// Output describes one configured sink.
type Output struct {
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
}

// Config is the root configuration document.
type Config struct {
	Cluster       string   `json:"cluster"`
	FlushInterval string   `json:"flushInterval"`
	QueueCapacity int      `json:"queueCapacity"`
	SampleRate    float64  `json:"sampleRate"`
	Outputs       []Output `json:"outputs"`
}

// Load reads .env (if present, overriding nothing already set in the
// process environment), reads and validates the JSON document at path
// against configSchema, and unmarshals it into a Config.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		cclog.Warnf("metricsconfig: failed to load .env: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metricsconfig: read %s: %w", path, err)
	}

	if err := Validate(raw); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("metricsconfig: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks instance against configSchema without unmarshaling it
// into a Config, the same two-step validate-then-decode shape
// internal/config/validate.go applies to the teacher's own config files.
func Validate(instance json.RawMessage) error {
	sch, err := jsonschema.CompileString("metricsconfig.json", configSchema)
	if err != nil {
		return fmt.Errorf("metricsconfig: compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(instance, &v); err != nil {
		return fmt.Errorf("metricsconfig: parse instance: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("metricsconfig: validate: %w", err)
	}
	return nil
}
