package main

import "github.com/fantasyrun/runner-market/cmd"

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Execute()
}
