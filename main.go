package main

import (
	"os"

	"github.com/htol/booksapi/app"
)

func main() {
	os.Exit(app.CLI(os.Args[1:]))
}
