package main

import "github.com/yungbote/novo-contact-backend/internal/cli"

func main() {
	cli.Execute()
}
