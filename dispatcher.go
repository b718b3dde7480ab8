package botlink

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/valgard/botlink/internal/dispatch"
	"github.com/valgard/botlink/internal/errors"
)

// Dispatcher is the server-side half of the bridge: it executes named
// operations against the bot subsystem and replies on the response channel.
type Dispatcher = dispatch.Dispatcher

// DispatchHandler executes one named operation. Args are the request's
// positional arguments after JSON decoding; the returned value becomes the
// reply's result.
type DispatchHandler = dispatch.Handler

// Schema is a JSON Schema object for argument validation.
type Schema = jsonschema.Schema

// NewDispatcher creates a dispatcher over the given transport, listening on
// the request channel and replying on the response channel. Register
// handlers before calling Start.
func NewDispatcher(transport Transport, opts ...Option) (*Dispatcher, error) {
	if transport == nil {
		return nil, errors.ErrNilTransport
	}

	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	return dispatch.New(
		log,
		transport,
		options.RequestChannel,
		options.ResponseChannel,
		options.MaxConcurrent,
	), nil
}

// ArgsSchema creates a Schema for a fixed positional argument list from
// simple type names.
//
// Supported types: "string", "int", "float", "bool", "object", "array".
// Unknown types default to "string".
//
// Example:
//
//	d.RegisterWithSchema("SpawnBot", botlink.ArgsSchema("string", "int"), spawnBot)
func ArgsSchema(types ...string) *Schema {
	items := make([]*jsonschema.Schema, len(types))
	for i, t := range types {
		items[i] = goTypeToJSONSchema(t)
	}

	return &jsonschema.Schema{
		Type:        "array",
		PrefixItems: items,
	}
}

// goTypeToJSONSchema converts a simple Go type name to a JSON Schema.
func goTypeToJSONSchema(goType string) *jsonschema.Schema {
	switch goType {
	case "string":
		return &jsonschema.Schema{Type: "string"}
	case "int", "integer":
		return &jsonschema.Schema{Type: "integer"}
	case "float", "number":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "object", "map":
		return &jsonschema.Schema{Type: "object"}
	case "array", "slice":
		return &jsonschema.Schema{Type: "array"}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
