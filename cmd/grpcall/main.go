package main

import "github.com/vietddude/grpcall/internal/cli"

func main() {
	cli.Execute()
}
