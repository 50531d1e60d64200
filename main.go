package main

import "github.com/qvx-labs/rqport/cmd"

func main() {
	cmd.Execute()
}
