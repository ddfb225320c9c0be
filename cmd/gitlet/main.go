package main

import "github.com/systemshift/gitlet/cmd/gitlet/cmd"

func main() {
	cmd.Execute()
}
