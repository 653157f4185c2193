package main

import "devicesapi/cmd"

func main() {
	cmd.Execute()
}
