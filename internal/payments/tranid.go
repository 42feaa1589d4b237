package payments

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// NewTransactionID returns a 24 hex character id: a 4 byte big-endian unix
// timestamp followed by 8 random bytes.
func NewTransactionID(now time.Time) string {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(now.Unix()))
	random := uuid.New()
	copy(buf[4:], random[:8])
	return hex.EncodeToString(buf[:])
}
