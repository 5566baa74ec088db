package main

import (
	"os"
)

var Version = "dev"

func main() {
	app := MakeApp()
	_ = app.Run(os.Args)
}
