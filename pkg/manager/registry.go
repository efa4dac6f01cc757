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

package manager

import (
	"os"

	"gopkg.in/yaml.v3"

	patzer "github.com/patzerhq/patzer/pkg/common"
)

type EngineInfoList map[string]EngineInfo

// Register records an engine in the registry if it is not already
// known.
func (list EngineInfoList) Register(engine *Engine) {
	if _, found := list[engine.key()]; !found {
		list[engine.key()] = EngineInfo{
			Author: engine.Author,
			Source: engine.URL,
		}
	}

	list.Dump()
}

// AddVersion records a freshly installed version of the given engine.
func (list EngineInfoList) AddVersion(engine *Engine, version string) {
	list.Register(engine)
	info := list[engine.key()]
	info.Versions = append(info.Versions, version)
	list[engine.key()] = info
	list.Dump()
}

// SetDefault marks the given version as the one a bare engine name
// resolves to.
func (list EngineInfoList) SetDefault(engine string, version string) {
	info := list[engine]
	info.Current = version
	list[engine] = info
	list.Dump()
}

// RemoveVersion forgets an installed version of the given engine. The
// current mark moves to the newest remaining version if it pointed at
// the removed one.
func (list EngineInfoList) RemoveVersion(engine *Engine, version string) {
	info, found := list[engine.key()]
	if !found {
		return
	}

	kept := make([]string, 0, len(info.Versions))
	for _, v := range info.Versions {
		if v != version {
			kept = append(kept, v)
		}
	}
	info.Versions = kept

	if info.Current == version {
		info.Current = ""
		if len(kept) > 0 {
			info.Current = kept[len(kept)-1]
		}
	}

	list[engine.key()] = info
	list.Dump()
}

// RemoveEngine forgets every installed version of the engine. The
// registry entry itself survives so the engine stays installable by
// name.
func (list EngineInfoList) RemoveEngine(engine *Engine) {
	info, found := list[engine.key()]
	if !found {
		return
	}

	info.Current = ""
	info.Versions = nil
	list[engine.key()] = info
	list.Dump()
}

// Dump persists the registry to its lockfile.
func (list EngineInfoList) Dump() {
	file, _ := yaml.Marshal(list)
	_ = os.WriteFile(EnginesFile, file, patzer.FilePermissions)
}

// EngineInfo describes one entry of the engine registry.
type EngineInfo struct {
	Author string `yaml:"author"`
	Source string `yaml:"source"`

	// Installation Stuff
	Current     string   `yaml:"current,omitempty"`
	Versions    []string `yaml:"versions,omitempty"`
	BuildScript string   `yaml:"build-script,omitempty"`
}

var Engines EngineInfoList

func init() {
	patzer.TryMkdir(SourceDirectory)
	patzer.TryMkdir(BinaryDirectory)

	patzer.TryCreate(EnginesFile, BaseEngineFile)

	file, _ := os.ReadFile(EnginesFile)
	_ = yaml.Unmarshal(file, &Engines)
}
