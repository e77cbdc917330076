package main

import (
	"log"

	"git.lost.host/meutraa/stepway/internal/config"
)

func main() {
	config.Parse()
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}
