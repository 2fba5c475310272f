package main

import "github.com/papapumpkin/textage/cmd"

func main() {
	cmd.Execute()
}
