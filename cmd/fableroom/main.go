package main

import "github.com/avorobev/fableroom/internal/cli"

func main() {
	cli.Execute()
}
