package main

import "github.com/theirongolddev/recur/cmd"

func main() {
	cmd.Execute()
}
