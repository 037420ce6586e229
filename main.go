package main

import "vehicle-catalog/cmd"

func main() {
	cmd.Execute()
}
