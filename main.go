package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/internal/tandem/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := tandem(); err != nil {
		logrus.Fatal(err)
	}
}

func tandem() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
