package main

import "savbot/cmd"

func main() {
	cmd.Execute()
}
