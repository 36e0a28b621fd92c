package main

import (
	"os"

	"github.com/soundprediction/orgsignal/cmd/orgsignal"
)

func main() {
	if err := orgsignal.Execute(); err != nil {
		os.Exit(1)
	}
}
