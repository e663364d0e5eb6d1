package main

import (
	"log"
	"os"
)

func helper() {
	os.Exit(2)
}

func main() {
	if len(os.Args) > 5 {
		helper()
	}
	defer log.Println("done")
	os.Exit(1) // want `avoid direct os.Exit call in main function of main package`
}
