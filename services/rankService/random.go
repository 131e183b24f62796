package rankService

import (
	"crypto/rand"
	"math/big"
)

// Picker chooses an index in [0, n). Tests substitute a scripted one.
type Picker interface {
	Intn(n int) int
}

// CryptoPicker draws from crypto/rand. Draws are not reproducible.
type CryptoPicker struct{}

func (CryptoPicker) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}
