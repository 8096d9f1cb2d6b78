package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings models the optional leadwatch.yml tuning file. Everything here has
// a sensible default, so running without a settings file is fully supported.
type Settings struct {
	// StalenessThreshold is the age beyond which a converted lead counts as
	// expired. The 1 minute default mirrors a testing configuration and is
	// expected to be raised in production.
	StalenessThreshold Duration `yaml:"staleness_threshold"`
	// TaskDeadlineOffset is added to the current time to set the deadline of
	// a follow-up task created by the postpone action.
	TaskDeadlineOffset Duration `yaml:"task_deadline_offset"`
	// ResponsibleID is the CRM user assigned to follow-up tasks.
	ResponsibleID int `yaml:"responsible_id"`
	// ReviewInterval, when non-zero, runs the review cycle automatically on a
	// timer in addition to the /leads command.
	ReviewInterval Duration `yaml:"review_interval"`
	// AdminAddr, when set, serves /healthz and /metrics on this address.
	AdminAddr string `yaml:"admin_addr"`
	// AMQPURL, when set, enables publishing lead activity events to RabbitMQ.
	AMQPURL string `yaml:"amqp_url"`
}

// DefaultSettings returns the reference configuration.
func DefaultSettings() Settings {
	return Settings{
		StalenessThreshold: Duration(time.Minute),
		TaskDeadlineOffset: Duration(2 * time.Hour),
		ResponsibleID:      1,
	}
}

// LoadSettings reads and validates a settings file. Fields absent from the
// file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings on top of the defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate ensures the settings are usable.
func (s Settings) Validate() error {
	if s.StalenessThreshold <= 0 {
		return fmt.Errorf("staleness_threshold must be positive")
	}
	if s.TaskDeadlineOffset <= 0 {
		return fmt.Errorf("task_deadline_offset must be positive")
	}
	if s.ResponsibleID < 1 {
		return fmt.Errorf("responsible_id must be at least 1")
	}
	if s.ReviewInterval < 0 {
		return fmt.Errorf("review_interval must not be negative")
	}
	return nil
}

// Duration wraps time.Duration with YAML decoding of "90s" / "2h" strings.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Store is a concurrency-safe holder for the current settings. The watcher
// replaces the value on file change; readers always see a complete snapshot.
type Store struct {
	mu sync.RWMutex
	s  Settings
}

// NewStore creates a Store seeded with the given settings.
func NewStore(s Settings) *Store {
	return &Store{s: s}
}

// Current returns the settings snapshot.
func (st *Store) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Replace swaps in a new settings snapshot.
func (st *Store) Replace(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = s
}
