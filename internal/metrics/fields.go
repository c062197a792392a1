package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrEndpoint = "endpoint"
	AttrOutcome  = "outcome"
	AttrCache    = "cache"
	AttrResult   = "result"
)
