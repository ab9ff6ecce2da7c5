package xlwt

import (
	"encoding/hex"
	"io"
	"math"
	"os"

	"golang.org/x/crypto/md4"
)

// Digest is the 128-bit MD4 digest of a picture's bytes. The drawing group
// uses it as the identity tag of a stored picture; it has no security role.
type Digest [md4.Size]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ComputeDigest returns the MD4 digest of data.
func ComputeDigest(data []byte) Digest {
	hasher := md4.New()
	hasher.Write(data)

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// ImageAsset is a picture file treated as an opaque blob.
type ImageAsset struct {
	// Path is where the picture was loaded from.
	Path string

	// ByteLength is len(Bytes).
	ByteLength uint32

	// Bytes is the raw file content, embedded verbatim in the drawing group.
	Bytes []byte

	// Digest is computed once from Bytes.
	Digest Digest
}

// LoadAsset reads the picture at path. The file is closed on every exit path.
func LoadAsset(path string) (*ImageAsset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &AssetReadError{Path: path, Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &AssetReadError{Path: path, Err: err}
	}
	return NewImageAsset(path, data)
}

// clone returns a copy of a that shares no bytes with it.
func (a *ImageAsset) clone() *ImageAsset {
	if a == nil {
		return nil
	}
	c := *a
	c.Bytes = append([]byte(nil), a.Bytes...)
	return &c
}

// NewImageAsset wraps picture bytes already held in memory.
func NewImageAsset(path string, data []byte) (*ImageAsset, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, overflowError("picture size", uint64(len(data)), math.MaxUint32)
	}
	return &ImageAsset{
		Path:       path,
		ByteLength: uint32(len(data)),
		Bytes:      data,
		Digest:     ComputeDigest(data),
	}, nil
}
