package main

import "voiceq/cmd"

func main() {
	cmd.Execute()
}
