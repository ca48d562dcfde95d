// Package schema holds the contracts shared across salesbot packages: the
// reasoning-engine and tool interfaces, the message model and the error
// taxonomy.
package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistryUnavailable reports a transport failure or non-2xx status from the tool registry.
	ErrRegistryUnavailable = errors.New("tool registry unavailable")
	// ErrRegistryProtocol reports a well-formed response whose payload breaks the envelope contract.
	ErrRegistryProtocol = errors.New("tool registry protocol error")

	ErrMalformedDescriptor      = errors.New("malformed tool descriptor")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrInvalidArgument          = errors.New("invalid tool argument")
	ErrToolExecution            = errors.New("tool execution failed")
	ErrOrchestration            = errors.New("orchestration failure")
)

// MissingParameterError names the tool and the absent required parameter.
type MissingParameterError struct {
	Tool  string
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q for tool %s", e.Param, e.Tool)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingRequiredParameter
}

// ToolExecutionError carries a failed remote execute call. Message is written
// for the reasoning engine so it can decide whether to retry.
type ToolExecutionError struct {
	Tool       string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *ToolExecutionError) Error() string { return e.Message }

func (e *ToolExecutionError) Unwrap() error { return e.Err }

func (e *ToolExecutionError) Is(target error) bool {
	return target == ErrToolExecution
}
