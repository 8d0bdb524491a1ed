package main

import "testderive/cmd/testderive/cmd"

func main() {
	cmd.Execute()
}
