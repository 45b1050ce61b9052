package main

import "github.com/KaramelBytes/goodnews-cli/cmd"

func main() {
	cmd.Execute()
}
