//go:build ruleguard

// Package gorules defines custom linter rules for the sightings service.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// JoinHostPort detects host:port built by hand and suggests net.JoinHostPort,
// which brackets IPv6 hosts.
//
//	addr := host + ":" + port        // flagged
//	addr := net.JoinHostPort(host, port)
func JoinHostPort(m dsl.Matcher) {
	m.Match(
		`fmt.Sprintf("%s:%d", $host, $port)`,
		`fmt.Sprintf("%v:%d", $host, $port)`,
	).
		Report("use net.JoinHostPort($host, strconv.Itoa($port)) instead of fmt.Sprintf for host:port")

	m.Match(`$host + ":" + $port`).
		Where(m["host"].Type.Is("string") && m["port"].Type.Is("string") &&
			m["host"].Text.Matches(`(?i)host`)).
		Report("use net.JoinHostPort($host, $port) instead of string concatenation")
}

// FormattedSpatialSQL flags PostGIS SQL assembled with fmt.Sprintf. Coordinates
// and distances must be bound as query parameters.
//
//	db.Raw(fmt.Sprintf("ST_DWithin(location, ST_MakePoint(%f, %f), %f)", lon, lat, m))  // flagged
//	db.Raw("ST_DWithin(location, ST_MakePoint(?, ?)::geography, ?)", lon, lat, m)
func FormattedSpatialSQL(m dsl.Matcher) {
	m.Match(`fmt.Sprintf($query, $*_)`).
		Where(m["query"].Text.Matches(`ST_[A-Za-z]+\(`)).
		Report("bind PostGIS arguments as query parameters instead of formatting them into SQL")
}

// HandlerContext flags context.Background() in HTTP handlers, which detaches
// the work from the request timeout and client cancellation.
func HandlerContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().PkgPath.Matches(`/internal/api/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use ctx.Request().Context() in handlers")
}

// BareDomainErrors flags fmt.Errorf returned directly from the domain
// packages; errors there are built with internal/errors so they carry a
// category for HTTP mapping and metrics.
func BareDomainErrors(m dsl.Matcher) {
	m.Match(`return $*_, fmt.Errorf($*args)`, `return fmt.Errorf($*args)`).
		Where(m.File().PkgPath.Matches(`/internal/(geo|species|sighting|legacy)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("wrap with errors.New(...).Category(...).Build() instead of returning fmt.Errorf")
}

// TestingContext suggests t.Context() over context.Background() in tests.
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$fn(context.Background(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead of context.Background()")
}

// WaitGroupGo detects the manual Add/Done pattern and suggests wg.Go().
func WaitGroupGo(m dsl.Matcher) {
	m.Match(
		`$wg.Add(1); go func() { defer $wg.Done(); $*body }()`,
	).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of manual Add/Done pattern").
		Suggest("$wg.Go(func() { $body })")
}
