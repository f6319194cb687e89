package main

import "github.com/ValentinKolb/nanoKV/cmd"

func main() {
	cmd.Execute()
}
