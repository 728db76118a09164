package apptpb

import (
	"fmt"
)

// Codec marshals apptpb messages. It reports the "proto" name, so peers see
// the usual application/grpc+proto content type.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("apptpb: cannot marshal %T", v)
	}
	return m.AppendWire(nil), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("apptpb: cannot unmarshal into %T", v)
	}
	if err := m.UnmarshalWire(data); err != nil {
		return fmt.Errorf("apptpb: unmarshal %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string { return "proto" }
