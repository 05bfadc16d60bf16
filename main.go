package main

import (
	"os"

	"github.com/lingobridge/lingobridge/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
