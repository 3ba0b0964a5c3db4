// Package mocks holds hand-written test doubles shared by several packages.
//
// Scheme client mocks record every request and answer synchronously. A test
// either sets the default response fields or overrides a method with its Fn
// field:
//
//	link := &mocks.MockLinkClient{LinkToken: "tok"}
//	link.LinkCardFn = func(ctx context.Context, req flow.LinkCardRequest, done func(domain.LinkedCard, error)) {
//	    done(domain.LinkedCard{}, scheme.ErrInvalidOTP)
//	}
//
// RecordingDelegate collects delegate callbacks for the flow tests, and
// ValidConfiguration returns an SDK configuration with a card scheme payment
// method.
package mocks
