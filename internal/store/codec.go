package store

import (
	"bytes"
	"encoding/hex"
	"sync"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

// bufferPool amortizes the allocation cost of the LZ4 write buffer
// across many recovery-snapshot writes; a single server can be
// expected to produce thousands of these over its lifetime.
var bufferPool = sync.Pool{New: func() interface{} { return new(bytes.Buffer) }}

// compressSnapshot LZ4-compresses a snapshot blob before it is written
// to recovery_snapshots. The buffer is returned to the pool before
// compressSnapshot returns, so the result is always a freshly sized
// copy safe to retain.
func compressSnapshot(src []byte) []byte {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()

	w := lz4.NewWriter(buf)
	_, _ = w.Write(src)
	_ = w.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// decompressSnapshot reverses compressSnapshot.
func decompressSnapshot(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// integrityHash returns a hex-encoded blake3 digest of data, used to
// detect a corrupted recovery_snapshots row. Checkpoint flushes and
// server_state rows carry no such hash.
func integrityHash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
