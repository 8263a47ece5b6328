// Package main — точка входа сервера экокоинов.
package main

import "ecosadik.ru/ecocoin-backend/internal/cli"

func main() {
	cli.Execute()
}
