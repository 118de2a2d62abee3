package deploy

import (
	"fmt"
	"regexp"
	"sort"
)

// resourceNamePattern is the pattern every derived resource name must match.
// Names start with a letter and contain only letters, digits, and hyphens,
// at most 64 characters total.
const resourceNamePattern = `^[a-zA-Z][a-zA-Z0-9-]{0,63}$`

var resourceNameRe = regexp.MustCompile(resourceNamePattern)

// Name suffixes for resources that share a handler's base name.
const (
	queueSuffix     = ".fifo"
	siteSuffix      = "-site"
	websocketSuffix = "-ws"
	layerBaseName   = "deps"
)

// ResourceName derives the physical name for a function, table, or role.
func ResourceName(project, stage, handler string) string {
	return fmt.Sprintf("%s-%s-%s", project, stage, handler)
}

// QueueName derives the FIFO queue name for a handler.
func QueueName(project, stage, handler string) string {
	return ResourceName(project, stage, handler) + queueSuffix
}

// SiteBucketName derives the site bucket name for a handler.
func SiteBucketName(project, stage, handler string) string {
	return ResourceName(project, stage, handler) + siteSuffix
}

// WebSocketAPIName derives the per-handler WebSocket API name.
func WebSocketAPIName(project, stage, handler string) string {
	return ResourceName(project, stage, handler) + websocketSuffix
}

// HTTPAPIName derives the shared HTTP API name for a project+stage.
func HTTPAPIName(project, stage string) string {
	return fmt.Sprintf("%s-%s", project, stage)
}

// LayerName derives the shared dependency-layer name for a project+stage.
func LayerName(project, stage string) string {
	return ResourceName(project, stage, layerBaseName)
}

// ParameterPath derives the parameter-store path for an external
// configuration key.
func ParameterPath(project, stage, key string) string {
	return fmt.Sprintf("/%s/%s/%s", project, stage, key)
}

// validateResourceName checks whether name is usable as a derived resource
// name. kind is used in the error message only.
func validateResourceName(name, kind string) error {
	if !resourceNameRe.MatchString(name) {
		return fmt.Errorf(
			"resource name %q (%s) is invalid: must match %s",
			name, kind, resourceNamePattern,
		)
	}
	return nil
}

// collectDerivedNames builds a map of every physical name the declared
// handler set will produce, keyed by name with the resource type as value.
func collectDerivedNames(project, stage string, handlers []Handler) map[string]string {
	names := make(map[string]string)
	for i := range handlers {
		h := &handlers[i]
		if h.needsFunction() {
			names[ResourceName(project, stage, h.Name)] = ResTypeFunction
		}
		switch h.Kind {
		case KindFIFOConsumer:
			names[QueueName(project, stage, h.Name)] = ResTypeQueue
		case KindAppSite, KindStaticSite:
			names[SiteBucketName(project, stage, h.Name)] = ResTypeBucket
		case KindWebSocket:
			names[WebSocketAPIName(project, stage, h.Name)] = ResTypeAPI
		case KindTableTrigger:
			names[ResourceName(project, stage, h.Name)] = ResTypeTable
		}
	}
	return names
}

// ValidateNames validates every derived resource name for the declared
// handler set and returns the problems in deterministic order.
func ValidateNames(project, stage string, handlers []Handler) []string {
	derived := collectDerivedNames(project, stage, handlers)

	keys := make([]string, 0, len(derived))
	for k := range derived {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, name := range keys {
		// The queue suffix is fixed and not part of the validated base name.
		base := name
		if len(base) > len(queueSuffix) && base[len(base)-len(queueSuffix):] == queueSuffix {
			base = base[:len(base)-len(queueSuffix)]
		}
		if err := validateResourceName(base, derived[name]); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
