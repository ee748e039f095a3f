// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads tandem's configuration file.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/tandem/pkg/common"
	"laptudirm.com/x/tandem/pkg/oracle"
	"laptudirm.com/x/tandem/pkg/session"
	"laptudirm.com/x/tandem/pkg/surface/chesscom"
)

//go:embed config.yaml
var defaultFile []byte

type Config struct {
	Session session.Config      `yaml:"session"`
	Engine  oracle.EngineConfig `yaml:"engine"`
	Surface chesscom.Config     `yaml:"surface"`
	Control Control             `yaml:"control"`
	Archive Archive             `yaml:"archive"`
}

// Control configures the control channel to the supervisor.
type Control struct {
	// Mode is "stdio", "none", or an address to serve HTTP on.
	Mode  string `yaml:"mode"`
	Limit int    `yaml:"limit"` // queued messages over HTTP
}

type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // defaults to the data directory
}

// Default returns the default configuration.
func Default() Config {
	var config Config
	if err := yaml.Unmarshal(defaultFile, &config); err != nil {
		panic("config: invalid default configuration: " + err.Error())
	}

	return config
}

// Load reads the configuration file at the given path over the default
// configuration. An empty path loads the user's configuration file, which
// is created with the defaults if it doesn't exist yet.
func Load(path string) (Config, error) {
	if path == "" {
		file, err := common.ConfigFile()
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}

		created, err := common.TryCreate(file, defaultFile)
		if err != nil {
			return Config{}, fmt.Errorf("config: create %s: %w", file, err)
		}

		if created {
			logrus.WithField("path", file).Info("wrote default configuration")
		}

		path = file
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return config, nil
}

// ArchivePath returns the path of the game archive.
func (config Config) ArchivePath() (string, error) {
	if config.Archive.Path != "" {
		return config.Archive.Path, nil
	}

	return common.ArchiveFile()
}
