package testutil

import "context"

// callLog records the operations a mock served, in order.
type callLog struct {
	Calls []string
}

func (c *callLog) record(op string) {
	c.Calls = append(c.Calls, op)
}

// Count returns how many times op was called.
func (c *callLog) Count(op string) int {
	n := 0
	for _, call := range c.Calls {
		if call == op {
			n++
		}
	}
	return n
}

// invoke records op and runs override, or returns a zero output when it is nil.
func invoke[In, Out, Opt any](
	c *callLog,
	op string,
	override func(context.Context, *In, ...func(*Opt)) (*Out, error),
	ctx context.Context,
	in *In,
	optFns []func(*Opt),
) (*Out, error) {
	c.record(op)
	if override != nil {
		return override(ctx, in, optFns...)
	}
	return new(Out), nil
}
