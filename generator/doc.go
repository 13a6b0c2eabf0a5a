// Package generator defines the text-generation capability that mindcanvas consumes and
// the plumbing shared by its implementations.
//
// A Generator proposes child concepts, elaborates a single concept, and summarizes a
// set of concepts. Implementations live in sub-packages: generator/llm drives any
// langchaingo llms.Model directly, generator/remote talks to a mindcanvas generation
// server over HTTP.
//
// Failures are tagged: *CallError for transport problems, non-success responses,
// timeouts and an open circuit breaker; *ParseError for responses that arrived but do
// not have the expected shape. Callers never receive partially validated data.
//
//	children, err := gen.Children(ctx, "derivative", []string{"calculus"})
//	var perr *generator.ParseError
//	if errors.As(err, &perr) {
//		// the model answered with something that is not a candidate list
//	}
package generator
