package main

import "github.com/photo-prestiges/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
