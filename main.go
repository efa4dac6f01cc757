package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/patzerhq/patzer/internal/patzer/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := patzer(); err != nil {
		logrus.Fatal(err)
	}
}

func patzer() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
