package main

import "github.com/snowfs/snowfs/cmd"

func main() {
	cmd.Execute()
}
