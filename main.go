package main

import "github.com/mikeydub/go-portfolio/server"

func main() {
	server.Init()
}
