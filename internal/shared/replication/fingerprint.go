package replication

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FingerprintVersion is bumped whenever the canonical encoding changes.
const FingerprintVersion = 1

type canonicalChange struct {
	Version   int       `msgpack:"v"`
	Operation Operation `msgpack:"op"`
	Payload   any       `msgpack:"payload"`
}

// Fingerprint derives a stable identity for (op, payload).
//
// The payload is encoded with msgpack using sorted map keys, compact integers
// and json field names, so the publisher and a consumer that decoded the
// payload from the wire compute the same value. Payloads must not rely on the
// nil/empty distinction of slices or maps surviving the transport.
func Fingerprint(op Operation, payload any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)

	if err := enc.Encode(canonicalChange{
		Version:   FingerprintVersion,
		Operation: op,
		Payload:   payload,
	}); err != nil {
		return "", fmt.Errorf("encode change for fingerprint: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return fmt.Sprintf("v%d:%s", FingerprintVersion, hex.EncodeToString(sum[:])), nil
}
