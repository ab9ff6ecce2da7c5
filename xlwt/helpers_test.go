package xlwt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeSample writes a synthetic picture into a temporary directory and
// returns its path.
func writeSample(t *testing.T, filename string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// sampleBytes returns n bytes of a repeating, non-constant pattern.
func sampleBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/251)
	}
	return data
}

func u16At(data []byte, pos int) uint16 {
	return binary.LittleEndian.Uint16(data[pos : pos+2])
}

func u32At(data []byte, pos int) uint32 {
	return binary.LittleEndian.Uint32(data[pos : pos+4])
}
