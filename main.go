package main

import "github.com/uzzysan/Klauzule-zakazane/cmd"

func main() {
	cmd.Execute()
}
