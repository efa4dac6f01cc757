package util

import (
	"time"

	"github.com/briandowns/spinner"
)

const spin = 31 // charset of the shared progress spinner

var working = spinner.New(spinner.CharSets[spin], 100*time.Millisecond)

// StartSpinner starts the shared progress spinner.
func StartSpinner() { working.Start() }

// PauseSpinner pauses the shared progress spinner so that other output
// can be written cleanly.
func PauseSpinner() { working.Stop() }
