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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// Engine represents one of the analysis engines managed by patzer. It
// contains metadata about the engine and its source repository.
type Engine struct {
	// Basic Information
	Name   string
	Author string
	Info   *EngineInfo

	// Source Repository Information
	URL  string // URL of the engine's remote repository
	Path string // Path to the engine's local repository
	*git.Repository
	*git.Worktree
}

// NewEngine creates an instance of *manager.Engine from the given
// engine identifier string, and returns the version the identifier
// requests. The identifier has to have one of the following formats,
// optionally suffixed with @<version>:
//
// 1. <engine-name>                 - Registry Engine Format
// 2. <engine-author>/<engine-name> - GitHub Engine Format
// 3. <full-source-git-url>         - Git Engine Format
//
// Only engines whose configurations are present in the registry by
// default or have been previously installed can be identified using
// format (1). Only engines whose repositories are hosted on GitHub can
// be identified by (2): github.com/<engine-author>/<engine-name> has
// to be the engine's source.
func NewEngine(identifier string) (*Engine, string, error) {
	source, version, found := strings.Cut(identifier, "@")
	if !found {
		// By default try to install the latest stable release.
		version = "stable"
	}

	var engine Engine

	// In all formats, the engine name is the last part of the source:
	// [<stuff-depending-on-the-particular-format>/]<engine-name>
	engine.Name = filepath.Base(source)
	engine.Path = filepath.Join(SourceDirectory, engine.key())

	// The formats can be differentiated using the number of '/' in
	// the source. (1) has 0, (2) has 1, and (3) has >= 2 '/'s.
	switch strings.Count(source, "/") {
	case 0:
		// Format (1): <engine-name>
		// The engine has to be found in the registry.
		info, known := Engines[engine.key()]
		if !known {
			return nil, "", fmt.Errorf("engine %s not found in the registry", engine.Name)
		}

		engine.Info = &info
		engine.URL = info.Source
		engine.Author = info.Author

	case 1:
		// Format (2): <engine-author>/<engine-name>
		engine.URL = "https://github.com/" + source
		engine.Author, _, _ = strings.Cut(source, "/")

	default:
		// Format (3): <full-source-git-url>
		engine.URL = source
		engine.Author = filepath.Base(filepath.Dir(source))
	}

	logrus.WithFields(logrus.Fields{
		"name":    engine.Name,
		"author":  engine.Author,
		"source":  engine.URL,
		"version": version,
	}).Debug("Figured out basic engine details")

	return &engine, version, nil
}

func (engine *Engine) key() string {
	return strings.ToLower(engine.Name)
}

func (engine *Engine) Binary() string {
	return filepath.Join(BinaryDirectory, engine.key())
}

func (engine *Engine) VersionBinary(version Version) string {
	return engine.Binary() + "-" + version.Name
}

func (engine *Engine) Downloaded(version Version) bool {
	_, err := os.Stat(engine.VersionBinary(version))
	return err == nil
}

// ResolveBinary maps an engine name to the path of its installed
// binary, preferring the version the registry marks as current.
func ResolveBinary(name string) (string, error) {
	key := strings.ToLower(name)
	base := filepath.Join(BinaryDirectory, key)

	if info, found := Engines[key]; found && info.Current != "" {
		versioned := base + "-" + info.Current
		if _, err := os.Stat(versioned); err == nil {
			return versioned, nil
		}
	}

	if _, err := os.Stat(base); err == nil {
		return base, nil
	}

	return "", fmt.Errorf("engine %s is not installed", name)
}
