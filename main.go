package main

import "github.com/inovacc/starcards/cmd"

func main() {
	cmd.Execute()
}
