package main

import "github.com/morse-hw/morseclock/cmd/morseclock/cmd"

func main() {
	cmd.Execute()
}
