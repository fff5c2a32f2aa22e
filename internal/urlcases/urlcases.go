// Package urlcases registers the suites comparing net/url with fasthttp.
package urlcases

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/violenttestpen/urlbench/internal/bench"
)

const (
	// TargetURL is the URL parsed by every URL suite.
	TargetURL = "https://www.google.com/path/to/something"
	// InitialQuery seeds every query-string suite.
	InitialQuery = "hello=world"
	// PairCount is the number of pairs written per query-string iteration.
	PairCount = 100
)

const (
	NetURL   = "net/url"
	FastHTTP = "fasthttp"
)

var (
	pairKeys   [PairCount]string
	pairValues [PairCount]string
)

func init() {
	for i := 0; i < PairCount; i++ {
		pairKeys[i] = "key-" + strconv.Itoa(i)
		pairValues[i] = "value-" + strconv.Itoa(i)
	}
}

// Suites builds every suite in report order.
func Suites() ([]*bench.Suite, error) {
	builders := []func() (*bench.Suite, error){
		urlParseSuite,
		urlStringSuite,
		searchParamsSetSuite,
		searchParamsAppendSuite,
		searchParamsSortSuite,
	}
	suites := make([]*bench.Suite, 0, len(builders))
	for _, build := range builders {
		s, err := build()
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// Select keeps the suites whose label is in labels, preserving order. An
// empty labels slice keeps everything.
func Select(suites []*bench.Suite, labels []string) ([]*bench.Suite, error) {
	if len(labels) == 0 {
		return suites, nil
	}
	byLabel := make(map[string]*bench.Suite, len(suites))
	for _, s := range suites {
		byLabel[s.Label] = s
	}
	want := make(map[string]bool, len(labels))
	for _, label := range labels {
		if _, ok := byLabel[label]; !ok {
			return nil, fmt.Errorf("unknown suite %q", label)
		}
		want[label] = true
	}
	selected := make([]*bench.Suite, 0, len(labels))
	for _, s := range suites {
		if want[s.Label] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

func register(label string, cases ...bench.Case) (*bench.Suite, error) {
	s := bench.NewSuite(label)
	for _, c := range cases {
		if err := s.Add(c.Name, c.Op); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func urlParseSuite() (*bench.Suite, error) {
	return register("URL",
		bench.Case{Name: NetURL, Op: func() (any, error) {
			return url.Parse(TargetURL)
		}},
		bench.Case{Name: FastHTTP, Op: func() (any, error) {
			u := new(fasthttp.URI)
			if err := u.Parse(nil, []byte(TargetURL)); err != nil {
				return nil, err
			}
			return u, nil
		}},
	)
}

func urlStringSuite() (*bench.Suite, error) {
	parsed, err := url.Parse(TargetURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", TargetURL, err)
	}
	var uri fasthttp.URI
	if err := uri.Parse(nil, []byte(TargetURL)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TargetURL, err)
	}

	return register("URL.String",
		bench.Case{Name: NetURL, Op: func() (any, error) {
			return parsed.String(), nil
		}},
		bench.Case{Name: FastHTTP, Op: func() (any, error) {
			return string(uri.FullURI()), nil
		}},
	)
}

func searchParamsSetSuite() (*bench.Suite, error) {
	return register("URLSearchParams.set",
		bench.Case{Name: NetURL, Op: func() (any, error) {
			q, err := url.ParseQuery(InitialQuery)
			if err != nil {
				return nil, err
			}
			for i := 0; i < PairCount; i++ {
				q.Set(pairKeys[i], pairValues[i])
			}
			return q.Encode(), nil
		}},
		bench.Case{Name: FastHTTP, Op: func() (any, error) {
			var args fasthttp.Args
			args.Parse(InitialQuery)
			for i := 0; i < PairCount; i++ {
				args.Set(pairKeys[i], pairValues[i])
			}
			return args.String(), nil
		}},
	)
}

func searchParamsAppendSuite() (*bench.Suite, error) {
	return register("URLSearchParams.append",
		bench.Case{Name: NetURL, Op: func() (any, error) {
			q, err := url.ParseQuery(InitialQuery)
			if err != nil {
				return nil, err
			}
			for i := 0; i < PairCount; i++ {
				q.Add(pairKeys[i], pairValues[i])
			}
			return q.Encode(), nil
		}},
		bench.Case{Name: FastHTTP, Op: func() (any, error) {
			var args fasthttp.Args
			args.Parse(InitialQuery)
			for i := 0; i < PairCount; i++ {
				args.Add(pairKeys[i], pairValues[i])
			}
			return args.String(), nil
		}},
	)
}

// searchParamsSortSuite appends pairs in reverse key order and serializes
// them sorted. url.Values.Encode always sorts by key.
func searchParamsSortSuite() (*bench.Suite, error) {
	return register("URLSearchParams.sort",
		bench.Case{Name: NetURL, Op: func() (any, error) {
			q := make(url.Values, PairCount)
			for i := PairCount - 1; i >= 0; i-- {
				q.Add(pairKeys[i], pairValues[i])
			}
			return q.Encode(), nil
		}},
		bench.Case{Name: FastHTTP, Op: func() (any, error) {
			var args fasthttp.Args
			for i := PairCount - 1; i >= 0; i-- {
				args.Add(pairKeys[i], pairValues[i])
			}
			args.Sort(bytes.Compare)
			return args.String(), nil
		}},
	)
}
