package mintrpc

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/signature"
)

func encodeRequest(req mint.Request) (*structpb.Struct, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func decodeRequest(s *structpb.Struct) (mint.Request, error) {
	var req mint.Request
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, err
	}
	return req, nil
}

// encodeResult keeps the sender's shape. A result structpb cannot hold
// travels as its normalized signature string.
func encodeResult(r signature.Result) *structpb.Value {
	v, err := structpb.NewValue(signature.ToAny(r))
	if err != nil {
		return structpb.NewStringValue(signature.Normalize(r))
	}
	return v
}

func decodeResult(v *structpb.Value) signature.Result {
	return signature.FromAny(v.AsInterface())
}
