package valuestore

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// Version is the current record format version.
const Version = 1

// record is the serialized form of a stored tensor.
type record struct {
	Version int           `json:"version"`
	Shape   backend.Shape `json:"shape"`
	Data    []float64     `json:"data"`
}

// validate rejects tensors whose data does not fill their shape.
func validate(t backend.Tensor) error {
	if len(t.Data) != t.Shape.Size() {
		return fmt.Errorf("%d elements for shape %s: %w",
			len(t.Data), t.Shape, backend.ErrShapeMismatch)
	}
	return nil
}

func encode(t backend.Tensor) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return json.Marshal(record{Version: Version, Shape: t.Shape, Data: t.Data})
}

func decode(data []byte) (backend.Tensor, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return backend.Tensor{}, fmt.Errorf("decode value: %w", err)
	}
	if r.Version != Version {
		return backend.Tensor{}, fmt.Errorf("decode value: unsupported version %d", r.Version)
	}
	return backend.Tensor{Shape: r.Shape, Data: r.Data}, nil
}
