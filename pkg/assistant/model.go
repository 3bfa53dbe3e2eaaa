package assistant

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrMissingQuery is returned when a dispatch request carries no text query
var ErrMissingQuery = errors.New("missing query in request body")

// ErrUpstream is returned when the language model call fails or its response
// carries no usable content
var ErrUpstream = errors.New("language model upstream failure")

// FunctionCall is a structured action proposal emitted by the model in lieu
// of free text. It is never executed without server-side validation.
type FunctionCall struct {
	Name string
	Args json.RawMessage
}

// ModelResult is the outcome of one model invocation: either free text or
// exactly one function call
type ModelResult struct {
	Text string
	Call *FunctionCall
}

// ModelInterface is the capability boundary to the language model: one
// prompt plus a tool schema in, one result out. No multi-turn tool loop.
type ModelInterface interface {
	Generate(ctx context.Context, prompt string, tools []Tool) (*ModelResult, error)
}
