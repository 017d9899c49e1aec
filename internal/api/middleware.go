package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the wire format version of the response envelope.
// The GUI client checks this field; bump it only together with a client
// release.
const EnvelopeVersion = 1

// APIEnvelope is the standard response wrapper. Success responses carry
// Data; simple failures carry Error.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope is the wrapper for failures that carry a machine
// code and optional details alongside the message.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the envelope.
// It is registered as a huma transformer, so handlers return plain
// response structs and never see the wrapper.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case APIEnvelope, APIErrorEnvelope:
		// Already wrapped.
		return v, nil

	case *APIError:
		if body.Code != "" {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Code:    body.Code,
				Message: body.Message,
				Details: body.Details,
			}, nil
		}
		return APIEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Message,
		}, nil

	case error:
		return APIEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Error(),
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: strings.HasPrefix(status, "2"),
		Data:    v,
	}, nil
}
