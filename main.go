package main

import "github.com/frahmantamala/mercado-facil/cmd"

func main() {
	cmd.Execute()
}
