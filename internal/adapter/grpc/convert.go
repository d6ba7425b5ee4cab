package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts a JSON-tagged value into a protobuf Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", v, err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into a JSON-tagged value.
// Fields v does not declare are rejected, so a misspelled key is an error.
func fromStruct(in *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode struct: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}
