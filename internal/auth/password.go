package auth

import "github.com/alexedwards/argon2id"

// hashParams segue as recomendações correntes para Argon2id em servidores:
// 64 MB de memória, 3 iterações, paralelismo 1.
var hashParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o hash Argon2id da senha. Os parâmetros ficam codificados no
// próprio hash, então podem evoluir sem migração.
func Hash(senha string) (string, error) {
	return argon2id.CreateHash(senha, hashParams)
}

// Verify confere a senha contra um hash Argon2id existente.
func Verify(senha, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(senha, hash)
}
