package main

import "github.com/theirongolddev/cusage/cmd"

func main() {
	cmd.Execute()
}
