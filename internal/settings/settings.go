// Package settings provides watcher user preferences persistence.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"studentdesk/internal/config"
	"studentdesk/internal/domain"
)

// MinPollIntervalSec is the lowest accepted poll interval.
const MinPollIntervalSec = 5

// ScheduleDayAll disables the schedule day filter.
const ScheduleDayAll = "All"

// Settings holds user preferences persisted to disk.
//
// JSON Schema:
//
//	{
//	  "pollIntervalSec": 30,
//	  "notifyHomework": true,
//	  "notifySchedule": true,
//	  "notifyGrades": true,
//	  "notifySound": false,
//	  "notificationDurationSec": 8,
//	  "autoPollAfterLogin": true,
//	  "scheduleDay": "All",
//	  "lastFullName": ""
//	}
//
// Settings are stored at ~/.config/studentdesk/settings.json
type Settings struct {
	// PollIntervalSec is the seconds between poll cycles, minimum 5.
	PollIntervalSec int `json:"pollIntervalSec"`

	// NotifyHomework enables notifications for homework changes.
	NotifyHomework bool `json:"notifyHomework"`

	// NotifySchedule enables notifications for schedule changes.
	NotifySchedule bool `json:"notifySchedule"`

	// NotifyGrades enables notifications for grade changes.
	NotifyGrades bool `json:"notifyGrades"`

	// NotifySound plays the alert sound when notifications fire.
	NotifySound bool `json:"notifySound"`

	// NotificationDurationSec is how long a notification stays on screen.
	NotificationDurationSec int `json:"notificationDurationSec"`

	// AutoPollAfterLogin starts the watcher right after a successful login.
	AutoPollAfterLogin bool `json:"autoPollAfterLogin"`

	// ScheduleDay is the persisted schedule day filter, "All" or a weekday.
	ScheduleDay string `json:"scheduleDay"`

	// LastFullName prefills the login form.
	LastFullName string `json:"lastFullName"`
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{
		PollIntervalSec:         30,
		NotifyHomework:          true,
		NotifySchedule:          true,
		NotifyGrades:            true,
		NotifySound:             false,
		NotificationDurationSec: 8,
		AutoPollAfterLogin:      true,
		ScheduleDay:             ScheduleDayAll,
	}
}

// PollInterval returns the poll interval as a duration.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSec) * time.Second
}

// NotificationDuration returns the on-screen duration as a duration.
func (s *Settings) NotificationDuration() time.Duration {
	return time.Duration(s.NotificationDurationSec) * time.Second
}

// Load reads settings from the config directory.
// If the settings file does not exist, returns default settings.
func Load() (*Settings, error) {
	config.Load()
	return LoadFrom(Path())
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if err := Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// Save writes settings to the config directory.
// Creates the config directory if it doesn't exist.
func Save(settings *Settings) error {
	config.Load()
	return SaveTo(Path(), settings)
}

// SaveTo writes settings to an explicit path.
func SaveTo(path string, settings *Settings) error {
	if err := Validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Validate checks that settings values are valid.
// Preconditions: settings must be non-nil.
func Validate(settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if settings.PollIntervalSec < MinPollIntervalSec {
		return fmt.Errorf("pollIntervalSec must be at least %d, got %d", MinPollIntervalSec, settings.PollIntervalSec)
	}
	if settings.NotificationDurationSec < 1 {
		return fmt.Errorf("notificationDurationSec must be at least 1, got %d", settings.NotificationDurationSec)
	}
	if err := validateScheduleDay(settings.ScheduleDay); err != nil {
		return err
	}
	return nil
}

func validateScheduleDay(day string) error {
	if day == "" || day == ScheduleDayAll {
		return nil
	}
	for _, d := range domain.WeekDays {
		if day == d {
			return nil
		}
	}
	return fmt.Errorf("invalid scheduleDay value: %s", day)
}

// Path returns the path to the settings.json file.
func Path() string {
	configDir := config.Get("config_dir", "")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdgConfigHome, "studentdesk")
	}
	return filepath.Join(configDir, "settings.json")
}
