package lcz

import (
	"encoding/json"
	"fmt"
)

// Palette maps class labels to color values (hex strings such as
// "#8c0000"). The palette is passed through verbatim; completeness against
// a reference table is not checked here, so a class without an entry shows
// up as a missing-color failure at render time.
type Palette map[string]string

// LoadPalette reads a JSON object of class -> color pairs. A missing or
// malformed resource fails with a *ResourceError.
func LoadPalette(path string) (Palette, error) {
	data, err := readResource(path)
	if err != nil {
		return nil, err
	}

	var palette Palette
	if err := json.Unmarshal(data, &palette); err != nil {
		return nil, resourceErr(path, fmt.Errorf("decode palette: %w", err))
	}
	if len(palette) == 0 {
		return nil, resourceErr(path, fmt.Errorf("palette is empty"))
	}
	return palette, nil
}
