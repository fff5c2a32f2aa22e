// Package bench runs micro-benchmarks that compare interchangeable
// implementations of the same operation.
//
// Cases are registered on a Suite, a Runner collects a minimum number of
// successful samples per case, strictly one case at a time, and a Reporter
// prints each suite ranked by throughput:
//
//	s := bench.NewSuite("URL")
//	s.MustAdd("net/url", func() (any, error) { return url.Parse(raw) })
//	results, err := bench.NewRunner(bench.WithMinSamples(1000)).Run(ctx, []*bench.Suite{s})
//	bench.NewReporter(os.Stdout).Report(results)
package bench
