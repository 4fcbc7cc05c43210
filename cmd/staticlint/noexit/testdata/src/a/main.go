package main

import "os"

func main() {
	defer helper()
	os.Exit(1) // want "вызов os.Exit в функции main запрещён"
}

func helper() {
	os.Exit(2)
}
