package wire

import (
	"encoding/json"
	"fmt"
)

// Message type discriminators.
const (
	TypeRequest  = "bot_request"
	TypeResponse = "bot_response"
)

// Response subtypes.
const (
	SubtypeSuccess = "success"
	SubtypeError   = "error"
)

// Request represents a method invocation sent to the remote dispatcher.
//
// Wire format:
//
//	{
//	  "type": "bot_request",
//	  "request_id": "01HQ3...",
//	  "request": {
//	    "method": "SpawnBot",
//	    "args": [...]
//	  }
//	}
type Request struct {
	// Type is always "bot_request"
	Type string `json:"type"`

	// RequestID uniquely identifies this request for response correlation
	RequestID string `json:"request_id"`

	// Request contains the nested method name and positional arguments
	Request map[string]any `json:"request"`
}

// NewRequest builds a request envelope for a method invocation.
func NewRequest(requestID, method string, args []any) *Request {
	if args == nil {
		args = []any{}
	}

	return &Request{
		Type:      TypeRequest,
		RequestID: requestID,
		Request: map[string]any{
			"method": method,
			"args":   args,
		},
	}
}

// Method extracts the method name from the nested request data.
func (r *Request) Method() string {
	if m, ok := r.Request["method"].(string); ok {
		return m
	}

	return ""
}

// Args extracts the positional arguments from the nested request data.
func (r *Request) Args() []any {
	if a, ok := r.Request["args"].([]any); ok {
		return a
	}

	return nil
}

// ParseRequest decodes and validates a request envelope.
func ParseRequest(payload []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}

	if req.Type != TypeRequest {
		return nil, fmt.Errorf("unexpected message type %q", req.Type)
	}

	if req.RequestID == "" {
		return nil, fmt.Errorf("request missing request_id")
	}

	return &req, nil
}

// Reply represents a response to a request.
//
// Wire format for success:
//
//	{
//	  "type": "bot_response",
//	  "response": {
//	    "subtype": "success",
//	    "request_id": "01HQ3...",
//	    "result": ...
//	  }
//	}
//
// Wire format for error:
//
//	{
//	  "type": "bot_response",
//	  "response": {
//	    "subtype": "error",
//	    "request_id": "01HQ3...",
//	    "error": "error message"
//	  }
//	}
type Reply struct {
	// Type is always "bot_response"
	Type string `json:"type"`

	// Response contains the nested subtype, request_id, and either
	// result (for success) or error (for error)
	Response map[string]any `json:"response"`
}

// NewSuccessReply builds a success reply carrying a result value.
func NewSuccessReply(requestID string, result any) *Reply {
	return &Reply{
		Type: TypeResponse,
		Response: map[string]any{
			"subtype":    SubtypeSuccess,
			"request_id": requestID,
			"result":     result,
		},
	}
}

// NewErrorReply builds an error reply carrying a message.
func NewErrorReply(requestID, errMsg string) *Reply {
	return &Reply{
		Type: TypeResponse,
		Response: map[string]any{
			"subtype":    SubtypeError,
			"request_id": requestID,
			"error":      errMsg,
		},
	}
}

// RequestID extracts the request_id from the nested response.
func (r *Reply) RequestID() string {
	if id, ok := r.Response["request_id"].(string); ok {
		return id
	}

	return ""
}

// IsError checks if the reply is an error reply.
func (r *Reply) IsError() bool {
	if s, ok := r.Response["subtype"].(string); ok {
		return s == SubtypeError
	}

	return false
}

// ErrorMessage extracts the error message from an error reply.
func (r *Reply) ErrorMessage() string {
	if e, ok := r.Response["error"].(string); ok {
		return e
	}

	return ""
}

// Result extracts the result value from a success reply.
// A success reply with no result yields nil.
func (r *Reply) Result() any {
	return r.Response["result"]
}

// ParseReply decodes and validates a reply envelope.
func ParseReply(payload []byte) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}

	if reply.Type != TypeResponse {
		return nil, fmt.Errorf("unexpected message type %q", reply.Type)
	}

	if reply.RequestID() == "" {
		return nil, fmt.Errorf("reply missing request_id")
	}

	return &reply, nil
}
