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

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"

	"github.com/patzerhq/patzer/pkg/internal/util"
)

// Version represents an installable version of an Engine.
type Version struct {
	Name string              // Human-readable name of the version
	Ref  *plumbing.Reference // Git object reference of the version
}

// ResolveVersion resolves a version string for an Engine into a
// Version. The following formats for the version string are supported:
//
// stable: Resolves to the latest tagged patch of the Engine.
// latest: Resolves to the latest patch of the Engine.
// <name>: Resolves to the patch with the given name.
func (engine *Engine) ResolveVersion(v string) (Version, error) {
	var err error
	var version Version
	switch v {
	case "stable":
		version.Ref, err = engine.FindStable()

	case "latest":
		version.Ref, err = engine.FindLatest()

	default:
		version.Ref, err = engine.FindTag(v)
	}

	if err != nil || version.Ref == nil {
		// Print the actual error at DEBUG level, and return a
		// human-readable error instead.
		logrus.Debug(err)
		return version, fmt.Errorf("Unable to find version \x1b[31m%s\x1b[0m", v)
	}

	// Determine the version's name from the reference.
	version.Name = version.Ref.Name().Short()

	return version, nil
}

// FindStable finds the reference of the latest tagged patch to the
// Engine.
func (engine *Engine) FindStable() (*plumbing.Reference, error) {
	logrus.Debug("Looking for the latest stable release...")

	remote, err := engine.Remote(git.DefaultRemoteName)
	if err != nil {
		return nil, err
	}

	// Get a list of git objects from the Engine's remote repository.
	refs, err := remote.List(&git.ListOptions{PeelingOption: git.AppendPeeled})
	if err != nil {
		return nil, err
	}

	var stable *plumbing.Reference
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}

		// Which tag is the latest is determined by the Alphanum
		// sorting algorithm. Engine versioning usually follows an
		// internal format which Alphanum orders correctly.
		// https://web.archive.org/web/20210803201519/http://www.davekoelle.com/alphanum.html
		if stable == nil || util.AlphanumCompare(stable.Name().Short(), ref.Name().Short()) {
			stable = ref
		}
	}

	// If we didn't find any tagged patches, fallback to @latest.
	if stable == nil {
		return engine.FindLatest()
	}

	return stable, nil
}

// FindLatest finds the reference of the latest patch to the Engine.
func (engine *Engine) FindLatest() (*plumbing.Reference, error) {
	return engine.Head()
}

// FindTag finds the reference to the patch tagged with the given name
// in the Engine.
func (engine *Engine) FindTag(tag string) (*plumbing.Reference, error) {
	remote, err := engine.Remote(git.DefaultRemoteName)
	if err != nil {
		return nil, err
	}

	refs, err := remote.List(&git.ListOptions{PeelingOption: git.AppendPeeled})
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if ref.Name().IsTag() && ref.Name().Short() == tag {
			return ref, nil
		}
	}

	return nil, fmt.Errorf("Unable to find version \x1b[31m%s\x1b[0m", tag)
}
