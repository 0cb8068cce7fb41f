package logs

type Span string

type spanKey struct{}

var SpanKey spanKey
