package lcz

import (
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// readResource reads a static resource file into memory. Resources with a
// ".zst" suffix are decompressed transparently. The file handle is released
// before the function returns regardless of outcome.
func readResource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, resourceErr(path, err)
	}

	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, resourceErr(path, err)
	}
	defer decoder.Close()

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, resourceErr(path, err)
	}
	return decompressed, nil
}
