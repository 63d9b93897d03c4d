package main

import "tcpou/internal/cli"

func main() {
	cli.Execute()
}
