package settings

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// Settings are the user preferences kept across runs.
type Settings struct {
	// Debug overrides the scene's debug flag when set.
	Debug *bool `yaml:"debug,omitempty"`
}

// Store loads and saves Settings through gdata. A Store with a nil manager
// keeps settings in memory only.
type Store struct {
	manager  *gdata.Manager
	settings Settings
}

// Open opens the gdata storage for appName. When gdata is unavailable the
// returned Store works in memory and err says why.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewStore(nil), fmt.Errorf("settings: open gdata %q: %w", appName, err)
	}
	return NewStore(m), nil
}

// NewStore wraps manager and loads the saved settings, if any.
func NewStore(manager *gdata.Manager) *Store {
	s := &Store{manager: manager}
	if err := s.Load(); err != nil {
		log.Printf("settings: load failed, using defaults: %v", err)
	}
	return s
}

func (s *Store) Load() error {
	s.settings = Settings{}
	if s.manager == nil || !s.manager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}
	data, err := s.manager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("settings: load: %w", err)
	}
	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("settings: unmarshal: %w", err)
	}
	s.settings = loaded
	return nil
}

func (s *Store) Save() error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

func (s *Store) Persistent() bool {
	return s.manager != nil
}

// Debug returns the saved debug preference, falling back to def.
func (s *Store) Debug(def bool) bool {
	if s.settings.Debug == nil {
		return def
	}
	return *s.settings.Debug
}

func (s *Store) SetDebug(on bool) {
	s.settings.Debug = &on
}
