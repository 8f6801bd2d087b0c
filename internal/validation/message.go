package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cjscheller/serverless-api-framework/internal/errs"
)

// Message builds the client-facing message for a validation failure.
//
// Only the first cause is described; later causes for the same or other fields
// are dropped. The exception is additionalProperties, which lists every
// offending property across all causes.
func Message(causes []Cause) string {
	if len(causes) == 0 {
		return "Invalid request"
	}

	first := causes[0]
	param, isArrayItem := paramName(first.InstancePath)

	switch first.Keyword {
	case "required":
		return errs.ParamRequired(stringParam(first, "missingProperty"))

	case "type":
		if isArrayItem {
			return errs.InvalidArrayItemsType(param, stringParam(first, "type"))
		}
		return errs.InvalidType(param, stringParam(first, "type"))

	case "minLength":
		return errs.MinLength(param, intParam(first, "limit"))

	case "minItems":
		return errs.ArrayMinItems(param, intParam(first, "limit"))

	case "format":
		return errs.InvalidFormat(param, stringParam(first, "format"))

	case "minimum":
		return fmt.Sprintf("`%s` %s", param, first.Message)

	case "errorMessage":
		return first.Message

	case "additionalProperties":
		var props []string
		for _, c := range causes {
			if c.Keyword == "additionalProperties" {
				props = append(props, stringParam(c, "additionalProperty"))
			}
		}
		return errs.AdditionalProperties(props)

	default:
		return first.Message
	}
}

// paramName returns the last segment of an instance path. Array indexes are
// skipped so "/body/tags/2" names "tags" and reports an array item.
func paramName(instancePath string) (string, bool) {
	segments := strings.Split(instancePath, "/")
	param := segments[len(segments)-1]
	segments = segments[:len(segments)-1]

	if _, err := strconv.Atoi(param); err == nil && len(segments) > 0 {
		return segments[len(segments)-1], true
	}

	return param, false
}

func stringParam(c Cause, key string) string {
	if v, ok := c.Params[key]; ok && v != nil {
		return fmt.Sprint(v)
	}

	return ""
}

func intParam(c Cause, key string) int {
	return toInt(c.Params[key])
}
