package main

import "github.com/divinecoid/sabkabazaar/internal/cli"

func main() {
	cli.Execute()
}
