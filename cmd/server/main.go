package main

import "wodo.ai/wodo-connect/internal/cli"

func main() {
	cli.Execute()
}
