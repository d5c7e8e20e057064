package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"taskhub/config"
	"taskhub/connection"
)

func main() {
	if env := os.Getenv("ENV"); env != "" && env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	connection.StartServer()
}
