package main

import "github.com/KaramelBytes/chartprep-cli/cmd"

func main() {
	cmd.Execute()
}
