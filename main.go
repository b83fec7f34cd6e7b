package main

import (
	"timechart/core/logger"
	"timechart/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
