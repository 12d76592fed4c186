package main

import "github.com/notargets/gocaricature/cmd"

func main() {
	cmd.Execute()
}
