package main

import "github.com/G-Node/gin-release/cmd/gin-release/cmd"

func main() {
	cmd.Execute()
}
