package main

import "github.com/kozaktomas/face-indexer/cmd"

func main() {
	cmd.Execute()
}
