package main

import "github.com/usly-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
