package broker

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Kafka broker addresses and topic names for the job channel.
type Config struct {
	Brokers      []string `toml:"brokers"`
	JobsTopic    string   `toml:"jobs_topic"`
	ResultsTopic string   `toml:"results_topic"`
	ErrorsTopic  string   `toml:"errors_topic"`
	GroupID      string   `toml:"group_id"`
}

// Env maps config fields to environment variable names for override injection.
// Brokers accepts a comma-separated list.
type Env struct {
	Brokers      string
	JobsTopic    string
	ResultsTopic string
	ErrorsTopic  string
	GroupID      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Brokers != nil {
		c.Brokers = overlay.Brokers
	}
	if overlay.JobsTopic != "" {
		c.JobsTopic = overlay.JobsTopic
	}
	if overlay.ResultsTopic != "" {
		c.ResultsTopic = overlay.ResultsTopic
	}
	if overlay.ErrorsTopic != "" {
		c.ErrorsTopic = overlay.ErrorsTopic
	}
	if overlay.GroupID != "" {
		c.GroupID = overlay.GroupID
	}
}

func (c *Config) loadDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.JobsTopic == "" {
		c.JobsTopic = "image-processing-jobs"
	}
	if c.ResultsTopic == "" {
		c.ResultsTopic = "image-classification-results"
	}
	if c.ErrorsTopic == "" {
		c.ErrorsTopic = "image-processing-errors"
	}
	if c.GroupID == "" {
		c.GroupID = "prism-images"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Brokers != "" {
		if v := os.Getenv(env.Brokers); v != "" {
			brokers := strings.Split(v, ",")
			c.Brokers = make([]string, 0, len(brokers))
			for _, b := range brokers {
				if trimmed := strings.TrimSpace(b); trimmed != "" {
					c.Brokers = append(c.Brokers, trimmed)
				}
			}
		}
	}
	if env.JobsTopic != "" {
		if v := os.Getenv(env.JobsTopic); v != "" {
			c.JobsTopic = v
		}
	}
	if env.ResultsTopic != "" {
		if v := os.Getenv(env.ResultsTopic); v != "" {
			c.ResultsTopic = v
		}
	}
	if env.ErrorsTopic != "" {
		if v := os.Getenv(env.ErrorsTopic); v != "" {
			c.ErrorsTopic = v
		}
	}
	if env.GroupID != "" {
		if v := os.Getenv(env.GroupID); v != "" {
			c.GroupID = v
		}
	}
}

func (c *Config) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("brokers required")
	}
	if c.JobsTopic == "" {
		return fmt.Errorf("jobs_topic required")
	}
	if c.ResultsTopic == "" {
		return fmt.Errorf("results_topic required")
	}
	if c.ErrorsTopic == "" {
		return fmt.Errorf("errors_topic required")
	}
	if c.GroupID == "" {
		return fmt.Errorf("group_id required")
	}
	return nil
}
