package main

import "github.com/Tiliavir/klg/cmd"

func main() {
	cmd.Execute()
}
