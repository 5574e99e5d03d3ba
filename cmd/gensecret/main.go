// Command gensecret prints a freshly generated webhook secret suitable for
// HOOKBILL_WEBHOOK_SECRET and the hosting service's webhook configuration.
package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
)

const (
	secretLength = 64
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func main() {
	secret, err := generate(secretLength)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gensecret:", err)
		os.Exit(1)
	}
	fmt.Println(secret)
}

// generate draws n characters uniformly from alphabet using crypto/rand.
func generate(n int) (string, error) {
	size := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
