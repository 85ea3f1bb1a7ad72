package payment

import "context"

// CODProvider is cash on delivery: no gateway involved, the success callback
// fires synchronously from Init.
type CODProvider struct{}

func NewCODProvider() *CODProvider {
	return &CODProvider{}
}

func (c *CODProvider) Method() Method {
	return MethodCOD
}

func (c *CODProvider) Init(ctx context.Context, req Request, cb Callbacks) error {
	if cb.OnSuccess == nil {
		return nil
	}
	return cb.OnSuccess(ctx, "")
}
