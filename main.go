package main

import "github.com/josephlewis42/shesh/cmd"

func main() {
	cmd.Execute()
}
