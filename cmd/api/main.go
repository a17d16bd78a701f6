package main

import (
	"log"
	"os"
	"stockscreener/cmd"

	"go.uber.org/zap"
)

func main() {
	zap.S().Infow("starting api", "commitHash", os.Getenv("commit_hash"))
	apiHandler, config, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(config.Port)
	if err != nil {
		log.Fatal(err)
	}
}
