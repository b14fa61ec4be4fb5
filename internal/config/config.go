// Package config is the persisted section/key/value store behind the
// `config` subcommand: SMTP server, port, sender login and default receiver.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config keys, grouped the way the original conf.ini sections were.
const (
	KeyServer   = "smtp.server"
	KeyPort     = "smtp.port"
	KeySender   = "smtp.sender"
	KeyReceiver = "defaults.receiver"
)

// Config is the effective configuration handed to the components that need
// it. It is a plain value; nothing reads ambient global state.
type Config struct {
	Server   string
	Port     int
	Sender   string
	Receiver string
}

// Store wraps a viper instance bound to a single config file.
type Store struct {
	v    *viper.Viper
	path string
}

// DefaultPath returns the config file location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".enotify", "config.yaml"), nil
}

// Open loads the store from path. A missing file is not an error: the store
// starts from defaults and is created on the first Save.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault(KeyServer, "smtp.gmail.com")
	v.SetDefault(KeyPort, 587)
	v.SetDefault(KeySender, "")
	v.SetDefault(KeyReceiver, "")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return &Store{v: v, path: path}, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Config returns the effective configuration value.
func (s *Store) Config() Config {
	return Config{
		Server:   s.v.GetString(KeyServer),
		Port:     s.v.GetInt(KeyPort),
		Sender:   s.v.GetString(KeySender),
		Receiver: s.v.GetString(KeyReceiver),
	}
}

// Set overwrites a single key. The change is in-memory until Save.
func (s *Store) Set(key string, value interface{}) {
	s.v.Set(key, value)
}

// Settings returns the full section/key/value mapping, for display.
func (s *Store) Settings() map[string]interface{} {
	return s.v.AllSettings()
}

// Save persists the store back to its file. The write goes through a
// temporary file and a rename so a crash cannot leave a half-written config.
func (s *Store) Save() error {
	data, err := yaml.Marshal(s.v.AllSettings())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing config file %s: %w", s.path, err)
	}
	return nil
}
