package main

import osx "os"

func main() {
	osx.Exit(3) // want "вызов os.Exit в функции main запрещён"
}
