package main

import (
	"spacey-pipeline/cmd/spacey/cmd"
)

func main() {
	cmd.Execute()
}
