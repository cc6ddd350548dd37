package main

import "github.com/kurumiimari/hammer/cmd/hammer/cmd"

func main() {
	cmd.Execute()
}
