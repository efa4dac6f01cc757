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

package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Execute runs the given command in the given directory behind the
// progress spinner. The command's output stays hidden unless it fails
// or trace logging is enabled. A non-empty errStr replaces the raw
// error with a human-readable one.
func Execute(dir, errStr, command string, args ...string) error {
	logrus.Debugf("\x1b[34m%s\x1b[0m %s\n", command, strings.Join(args, " "))
	cmd := exec.Command(command, args...)
	cmd.Dir = dir

	// Pipes capturing stdout and stderr for the failure dump.
	or, ow, _ := os.Pipe()
	er, ew, _ := os.Pipe()

	cmd.Stdout = ow
	cmd.Stderr = ew

	// Show the command's output if logging level is Trace.
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	fmt.Print("\x1b[33m") // Make the outputs yellow.
	StartSpinner()        // Start the ~working~ spinner.

	err := cmd.Run()

	PauseSpinner()       // Stop the ~working~ spinner.
	fmt.Print("\x1b[0m") // Reset the terminal's color.

	_ = ow.Close()
	_ = ew.Close()

	if err != nil {
		// Dump the command's stdout and stderr in case of failure.
		if !logrus.IsLevelEnabled(logrus.TraceLevel) {
			fmt.Print("==== \x1b[31mERROR\x1b[0m ====\n\x1b[31m")
			_, _ = io.Copy(os.Stdout, or)
			_, _ = io.Copy(os.Stderr, er)
			fmt.Print("\x1b[0m===============\n")
		}

		if errStr == "" {
			return err
		}

		return errors.New(errStr)
	}

	return nil
}
