package main

import (
	"os"

	"github.com/soundprediction/recommender/cmd/recommender"
)

func main() {
	if err := recommender.Execute(); err != nil {
		os.Exit(1)
	}
}
