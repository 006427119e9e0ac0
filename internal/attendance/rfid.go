package attendance

import (
	"crypto/rand"
	"math/big"
)

const (
	rfidTagLength   = 8
	rfidTagAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateRFIDTag returns a random 8-character uppercase alphanumeric tag.
func GenerateRFIDTag() (string, error) {
	buf := make([]byte, rfidTagLength)
	max := big.NewInt(int64(len(rfidTagAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = rfidTagAlphabet[n.Int64()]
	}
	return string(buf), nil
}
