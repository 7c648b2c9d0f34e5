package main

import "github.com/jsphweid/orchid/cmd"

func main() {
	cmd.Execute()
}
