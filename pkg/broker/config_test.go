package broker_test

import (
	"slices"
	"testing"

	"github.com/mwhitlock/prism/pkg/broker"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &broker.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !slices.Equal(cfg.Brokers, []string{"localhost:9092"}) {
		t.Errorf("Brokers = %v, want [localhost:9092]", cfg.Brokers)
	}
	if cfg.JobsTopic != "image-processing-jobs" {
		t.Errorf("JobsTopic = %q", cfg.JobsTopic)
	}
	if cfg.ResultsTopic != "image-classification-results" {
		t.Errorf("ResultsTopic = %q", cfg.ResultsTopic)
	}
	if cfg.ErrorsTopic != "image-processing-errors" {
		t.Errorf("ErrorsTopic = %q", cfg.ErrorsTopic)
	}
	if cfg.GroupID != "prism-images" {
		t.Errorf("GroupID = %q", cfg.GroupID)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := &broker.Config{
		Brokers:   []string{"localhost:9092"},
		JobsTopic: "image-processing-jobs",
	}

	cfg.Merge(&broker.Config{
		Brokers: []string{"kafka-1:9092", "kafka-2:9092"},
		GroupID: "prism-staging",
	})

	if !slices.Equal(cfg.Brokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Errorf("Brokers = %v, want overlay value", cfg.Brokers)
	}
	if cfg.JobsTopic != "image-processing-jobs" {
		t.Errorf("JobsTopic = %q, want base value preserved", cfg.JobsTopic)
	}
	if cfg.GroupID != "prism-staging" {
		t.Errorf("GroupID = %q, want overlay value", cfg.GroupID)
	}
}

func TestConfigEnvBrokerList(t *testing.T) {
	t.Setenv("TEST_BROKER_BROKERS", "kafka-1:9092, kafka-2:9092 ,kafka-3:9092")

	cfg := &broker.Config{}
	env := &broker.Env{Brokers: "TEST_BROKER_BROKERS"}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	want := []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}
	if !slices.Equal(cfg.Brokers, want) {
		t.Errorf("Brokers = %v, want %v (trimmed, comma-split)", cfg.Brokers, want)
	}
}

func TestConfigEnvTopicOverrides(t *testing.T) {
	t.Setenv("TEST_BROKER_JOBS", "jobs-staging")
	t.Setenv("TEST_BROKER_GROUP", "prism-staging")

	cfg := &broker.Config{}
	env := &broker.Env{
		JobsTopic: "TEST_BROKER_JOBS",
		GroupID:   "TEST_BROKER_GROUP",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.JobsTopic != "jobs-staging" {
		t.Errorf("JobsTopic = %q, want env value", cfg.JobsTopic)
	}
	if cfg.GroupID != "prism-staging" {
		t.Errorf("GroupID = %q, want env value", cfg.GroupID)
	}
	if cfg.ResultsTopic != "image-classification-results" {
		t.Errorf("ResultsTopic = %q, want default preserved", cfg.ResultsTopic)
	}
}
