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

// Package manager installs and keeps track of the analysis engines a
// synthetic opponent can be built on. Engines are fetched from their
// source repositories and built locally.
package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"

	"github.com/patzerhq/patzer/pkg/internal/util"
)

// Install fetches, builds, and registers the engine the given
// identifier refers to. See NewEngine for the identifier formats.
func Install(identifier string) error {
	engine, version, err := NewEngine(identifier)
	if err != nil {
		return err
	}

	if engine.Info != nil {
		fmt.Printf("\x1b[92mInstalling Engine:\x1b[0m %s by %s\n\n", engine.Name, engine.Author)
	} else {
		fmt.Printf("\x1b[92mInstalling Engine:\x1b[0m %s\n\n", engine.Name)
	}

	if engine.Repository, err = FetchRepository(engine.URL, engine.Path); err != nil {
		return err
	}

	if engine.Worktree, err = engine.Repository.Worktree(); err != nil {
		return err
	}

	resolved, err := engine.ResolveVersion(version)
	if err != nil {
		return err
	}

	if err := engine.Download(resolved); err != nil {
		return err
	}

	Engines.SetDefault(engine.key(), resolved.Name)
	return nil
}

// Download fetches and builds the given version of the engine, and
// moves the result to the binary directory under the binary name
// <engine-name>-<version-name>.
func (engine *Engine) Download(version Version) error {
	binary := engine.VersionBinary(version)
	new_version := !engine.Downloaded(version) // Is the version a new download ?

	// Build the given version of the engine and move it to binary.
	if err := engine.Build(version, binary); err != nil {
		return err
	}

	// Check if the engine's binary was successfully built and moved.
	if _, err := os.Stat(binary); err != nil {
		return errors.New("Installer \x1b[31mfailed\x1b[0m in building the engine binary")
	}

	// Register the version with the manager if it is new.
	if new_version {
		Engines.AddVersion(engine, version.Name)
	}

	fmt.Printf("\nInstalled engine \x1b[92m%s %s\x1b[0m.\n", engine.Name, version.Name)
	return nil
}

// Build builds the binary of the given Version of the Engine and moves
// it to dst.
func (engine *Engine) Build(version Version, dst string) error {
	head, err := engine.Head()
	if err != nil {
		return err
	}

	// Reset repository state after building has been done.
	defer func() {
		logrus.Debugf("Checking out back to %s", head.Name().Short())
		if err := engine.Checkout(&git.CheckoutOptions{
			Branch: head.Name(),
		}); err != nil {
			logrus.Error(err)
		}
	}()

	// Fetch the git objects associated with the given version, and
	// checkout its patch in preparation for building.
	if err := engine.FetchVersion(version); err != nil {
		return err
	}
	if err := engine.Checkout(&git.CheckoutOptions{
		// Checkout to a detached-HEAD.
		Hash: version.Ref.Hash(),
	}); err != nil {
		return err
	}

	// Some engines in the registry carry custom installation scripts.
	// If a custom build script is available, use it to build the
	// engine's binary.
	if engine.Info != nil && engine.Info.BuildScript != "" {
		return scriptBuild(engine.Path, dst, engine.Info.BuildScript)
	}

	// The default build method is an OpenBench-compliant Makefile.
	return makefileBuild(engine.Path, dst)
}

// The default installation pathway. An OpenBench-compliant Makefile is
// used to build the engine at a known location, from which the binary
// is moved to the bin.
func makefileBuild(src, dst string) error {
	logrus.Info("Trying to build using an \x1b[33mOpenBench-compliant Makefile\x1b[0m...")

	util.StartSpinner()
	defer util.PauseSpinner()

	// Find the shallowest Makefile in the engine's repository.
	var makefileDir, makefileDepth = "", 10_000
	_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		// Makefile names are case-insensitive. If a new Makefile is
		// found check if it is shallower than the previous one.
		if strings.EqualFold(filepath.Base(path), "makefile") &&
			strings.Count(path, string(filepath.Separator)) < makefileDepth {
			makefileDir = filepath.Dir(path)
			makefileDepth = strings.Count(path, string(filepath.Separator))
		}
		return nil
	})

	// No Makefile was found in the engine's source.
	if makefileDir == "" {
		return errors.New("Makefile \x1b[31mnot found\x1b[0m in the engine's repository")
	}

	logrus.WithField("makefile-directory", makefileDir).Debug("makefile found in repository")

	// make -j EXE=engine-binary # The binary will be moved from here later.
	err := util.Execute(
		makefileDir, // Run the command in the makefile's directory.
		"Makefile failed to build the engine binary",
		"make", "-j", "EXE=engine-binary",
	)

	if err != nil {
		return err
	}

	// Move the engine binary to the destination provided by the caller.
	if err := os.Rename(filepath.Join(makefileDir, "engine-binary"), dst); err != nil {
		logrus.Debug(err)
		return errors.New("Discovered Makefile is \x1b[31mnot OpenBench-compliant\x1b[0m")
	}

	return nil
}

// Installation using a custom script recorded in the engine registry.
func scriptBuild(src, dst, buildScript string) error {
	logrus.Info("Trying to build using an \x1b[33min-built installation script\x1b[0m...")

	util.StartSpinner()
	defer util.PauseSpinner()

	// Pipe the build-script into a shell command.
	// TODO: Make this standard Windows compatible.
	script := exec.Command("sh")
	script.Dir = src
	script.Stdin = strings.NewReader(buildScript)

	// Show the command's output if logging level is Trace.
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		script.Stdout = os.Stdout
		script.Stderr = os.Stderr
	}

	if err := script.Run(); err != nil {
		return errors.New("Build script failed; Check requirements or open an issue")
	}

	// Move the engine binary to the destination provided by the caller.
	if err := os.Rename(filepath.Join(src, "engine-binary"), dst); err != nil {
		return errors.New("Build script failed; Check requirements or open an issue")
	}

	return nil
}
