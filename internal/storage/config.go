package storage

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the name of the user configuration file.
// This file is user-managed and never written by cms.
const DefaultConfigFile = ".cmsconfig.yaml"

// Default configuration values.
const (
	DefaultDatabaseName = "StudentCMS"
	DefaultAuthors      = "CMS Team"
	DefaultTableName    = "StudentRecords"
	DefaultDataFile     = "data/students.txt"
	DefaultBackupFile   = "data/students.bak"
)

// Config holds the database identity written into the file header and the
// file paths the session works against.
type Config struct {
	// DatabaseName appears in the first header line of the database file.
	DatabaseName string `yaml:"database_name"`

	// Authors appears in the second header line.
	Authors string `yaml:"authors"`

	// TableName appears in the fourth header line.
	TableName string `yaml:"table_name"`

	// DataFile is the primary database file path.
	DataFile string `yaml:"data_file"`

	// BackupFile is the single-generation backup path.
	BackupFile string `yaml:"backup_file"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabaseName: DefaultDatabaseName,
		Authors:      DefaultAuthors,
		TableName:    DefaultTableName,
		DataFile:     DefaultDataFile,
		BackupFile:   DefaultBackupFile,
	}
}

// LoadConfig loads the config file at path if it exists, otherwise returns
// defaults. Partial config files are merged with defaults.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return DefaultConfig(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}
