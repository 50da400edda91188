package client

import "context"

// Result represents an in-flight or completed call.
type Result struct {
	done chan struct{}
	resp *Response
	err  error
}

// Go issues a call from a URL string or Options using c and returns
// immediately. The outcome is collected from the returned Result.
func Go[T Input](ctx context.Context, c *Client, in T) *Result {
	r := &Result{done: make(chan struct{})}

	err := Request(ctx, c, in, func(err error, resp *Response) {
		r.resp, r.err = resp, err
		close(r.done)
	})
	if err != nil {
		r.err = err
		close(r.done)
	}

	return r
}

// Done returns a channel that is closed when the call completes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Wait blocks until the call completes and returns its outcome.
func (r *Result) Wait() (*Response, error) {
	<-r.done
	return r.resp, r.err
}
