// Copyright © 2025 The Patzer Authors
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

package strength

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsFile []byte

var (
	defaultsOnce sync.Once
	defaults     *Config
)

// Default returns the built-in tuning table. The table is parsed once
// and shared, and is treated as read-only by every consumer.
func Default() *Config {
	defaultsOnce.Do(func() {
		config, err := FromYAML(defaultsFile)
		if err != nil {
			panic("strength: embedded defaults are broken: " + err.Error())
		}

		defaults = config
	})

	return defaults
}

// Load reads and validates a tuning table from a yaml file.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("strength: %w", err)
	}

	return FromYAML(file)
}

// FromYAML parses and validates a tuning table.
func FromYAML(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("strength: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
