package figure

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/plot/vg"
)

var ErrUnknownFormat = errors.New("format should be either 'presentation' or 'paper'")

// Format sets the text and line sizes of every figure drawn after it.
type Format struct {
	Name      string
	FontSize  vg.Length
	LabelSize vg.Length
	LineWidth vg.Length
	Width     vg.Length // full figure width
	DPI       int
}

var formats = map[string]Format{
	"presentation": {
		Name:      "presentation",
		FontSize:  vg.Points(10),
		LabelSize: vg.Points(12),
		LineWidth: vg.Points(2),
		Width:     5.5 * vg.Inch,
		DPI:       150,
	},
	"paper": {
		Name:      "paper",
		FontSize:  vg.Points(6),
		LabelSize: vg.Points(8),
		LineWidth: vg.Points(1),
		Width:     5.5 * vg.Inch,
		DPI:       300,
	},
}

var (
	formatMu sync.RWMutex
	current  = formats["presentation"]
)

// SetFormat selects "presentation" or "paper".
func SetFormat(name string) error {
	f, ok := formats[name]
	if !ok {
		return fmt.Errorf("%w: got %q", ErrUnknownFormat, name)
	}
	formatMu.Lock()
	current = f
	formatMu.Unlock()
	return nil
}

func CurrentFormat() Format {
	formatMu.RLock()
	defer formatMu.RUnlock()
	return current
}
