package bronze

import (
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// gzipThreshold is the payload size above which a gzipped sibling is written.
const gzipThreshold = 1 << 20

// WriteResult describes one persisted raw file.
type WriteResult struct {
	Bytes int64
	SHA1  string
	Gz    bool
}

// WriteJSON pretty-prints payload to path, writing atomically via a temp file
// and rename. Payloads over 1 MiB also get a gzipped sibling at path + ".gz".
func WriteJSON(path string, payload any) (WriteResult, error) {
	data, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return WriteResult{}, crerr.Wrapf(err, "encode %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, crerr.Wrapf(err, "create dir for %s", path)
	}
	if err := writeAtomic(path, data); err != nil {
		return WriteResult{}, err
	}

	sum := sha1.Sum(data)
	result := WriteResult{
		Bytes: int64(len(data)),
		SHA1:  hex.EncodeToString(sum[:]),
	}

	if len(data) > gzipThreshold {
		if err := writeGzip(path+".gz", data); err != nil {
			return WriteResult{}, err
		}
		result.Gz = true
	}
	return result, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return crerr.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return crerr.Wrapf(err, "rename %s", path)
	}
	return nil
}

func writeGzip(path string, data []byte) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(data); err != nil {
		return crerr.Wrapf(err, "gzip %s", path)
	}
	if err := zw.Close(); err != nil {
		return crerr.Wrapf(err, "gzip %s", path)
	}
	return writeAtomic(path, append([]byte(nil), buf.B...))
}
