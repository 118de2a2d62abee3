package deploy

// Tag key constants stamped on every resource this system creates. The
// project/stage/handler triple is the only durable record of ownership:
// there is no local state file, so the inventory and sweeper depend on
// these tags being present without exception.
const (
	TagKeyProject = "effortless:project"
	TagKeyStage   = "effortless:stage"
	TagKeyHandler = "effortless:handler"
	TagKeyType    = "effortless:type"
)

// Resource type tag values.
const (
	ResTypeFunction     = "function"
	ResTypeRole         = "role"
	ResTypeTable        = "table"
	ResTypeAPI          = "api"
	ResTypeQueue        = "queue"
	ResTypeBucket       = "bucket"
	ResTypeDistribution = "distribution"
	ResTypeLayer        = "layer"
)

// TagContext is the identity triple stamped on every created resource.
type TagContext struct {
	Project string
	Stage   string
	Handler string
}

// Tags builds the full tag set for a resource of the given type. The
// handler key is omitted for shared resources that belong to the whole
// project+stage (the HTTP API, the dependency layer).
func (tc TagContext) Tags(resType string) map[string]string {
	tags := map[string]string{
		TagKeyProject: tc.Project,
		TagKeyStage:   tc.Stage,
		TagKeyType:    resType,
	}
	if tc.Handler != "" {
		tags[TagKeyHandler] = tc.Handler
	}
	return tags
}

// shared returns a copy of the context with the handler cleared, for
// resources owned by the project+stage rather than one handler.
func (tc TagContext) shared() TagContext {
	tc.Handler = ""
	return tc
}

// matches reports whether a tag map carries this context's project and
// stage values.
func (tc TagContext) matches(tags map[string]string) bool {
	return tags[TagKeyProject] == tc.Project && tags[TagKeyStage] == tc.Stage
}
