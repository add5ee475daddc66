package main

import (
	"fmt"
	"log"
)

func main() {
	fmt.Println("starting")
	log.Println("started")
}
