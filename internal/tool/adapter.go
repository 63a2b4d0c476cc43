package tool

import (
	"context"
	"fmt"
)

// Validator is implemented by request types that check their own fields after decoding.
type Validator interface {
	Validate() error
}

// Handler is a typed tool implementation.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// Adapter binds a declaration to a typed handler so the tool manager can decode
// arguments into Req and serialise Resp without knowing either type.
type Adapter[Req, Resp any] struct {
	declaration Declaration
	handler     Handler[Req, Resp]
}

// NewAdapter creates an adapter for the given declaration and handler.
//
// Example usage:
//
//	NewAdapter(
//	    Declaration{Name: "fetch_kyc_profile", ...},
//	    kycTool.Run,
//	)
func NewAdapter[Req, Resp any](decl Declaration, handler Handler[Req, Resp]) *Adapter[Req, Resp] {
	return &Adapter[Req, Resp]{
		declaration: decl,
		handler:     handler,
	}
}

// Name returns the tool's identifier.
func (a *Adapter[Req, Resp]) Name() string {
	return a.declaration.Name
}

// Declaration returns the tool's schema for the LLM.
func (a *Adapter[Req, Resp]) Declaration() Declaration {
	return a.declaration
}

// Input returns a fresh request value to decode arguments into.
func (a *Adapter[Req, Resp]) Input() any {
	return new(Req)
}

// Execute runs the handler with a request produced by Input.
func (a *Adapter[Req, Resp]) Execute(ctx context.Context, input any) (any, error) {
	req, ok := input.(*Req)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected input type %T", a.declaration.Name, input)
	}
	return a.handler(ctx, req)
}
