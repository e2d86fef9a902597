// hashpass gera um hash Argon2id para semear credenciais na tabela
// identidades em desenvolvimento.
package main

import (
	"fmt"
	"os"

	"github.com/vitaltrack/bemestar/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
