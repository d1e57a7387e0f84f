package main

import (
	"os"

	"github.com/offlinefirst/uiatrace/internal/app"
)

func main() {
	os.Exit(app.Main())
}
