package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrStage    = "stage"
	AttrState    = "state"
	AttrProvider = "provider"
	AttrCheck    = "check"
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
)
