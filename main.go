package main

import "github.com/AgbodesiImoagene/coingro-controller/cmd"

func main() {
	cmd.Execute()
}
