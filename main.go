package main

import "github.com/theirongolddev/dupont/cmd"

func main() {
	cmd.Execute()
}
