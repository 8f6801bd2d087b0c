package errs

import (
	"fmt"
	"strings"
)

// PasswordInvalidMsg is the errorMessage attached to password schemas.
const PasswordInvalidMsg = "Password must be 8+ characters with one lowercase, uppercase, and number character."

func ParamRequired(missing string) string {
	return fmt.Sprintf("Missing required parameter `%s`", missing)
}

func InvalidType(param, correctType string) string {
	return fmt.Sprintf("`%s` must be of type %s", param, correctType)
}

func InvalidArrayItemsType(param, correctType string) string {
	return fmt.Sprintf("`%s` array must contain items of type %s", param, correctType)
}

// MinLength treats a limit of 1 as "must not be empty".
func MinLength(param string, limit int) string {
	if limit == 1 {
		return fmt.Sprintf("`%s` must not be empty", param)
	}

	return fmt.Sprintf("`%s` must NOT be shorter than %d character%s", param, limit, plural(limit))
}

// ArrayMinItems treats a limit of 1 as "must not be empty".
func ArrayMinItems(param string, limit int) string {
	if limit == 1 {
		return fmt.Sprintf("`%s` must not be empty", param)
	}

	return fmt.Sprintf("`%s` must have at least %d item%s", param, limit, plural(limit))
}

// AdditionalProperties renders each offending property in its own backticks:
//
//	Request must not include additional properties (`price`, `description`)
func AdditionalProperties(properties []string) string {
	quoted := make([]string, len(properties))
	for i, p := range properties {
		quoted[i] = "`" + p + "`"
	}

	return fmt.Sprintf("Request must not include additional properties (%s)", strings.Join(quoted, ", "))
}

func InvalidEnum(param string, allowed []string) string {
	return fmt.Sprintf("`%s` must be one of the allowed values [%s]", param, strings.Join(allowed, ","))
}

func InvalidFormat(param, format string) string {
	return fmt.Sprintf("`%s` does not meet format requirements for type %s", param, format)
}

// ResourceNotFound builds "<Resource> with ID '<id>' not found".
func ResourceNotFound(resource string, id any) string {
	return fmt.Sprintf("%s with ID '%v' not found", humanize(resource), id)
}

// UnspecifiedResourceNotFound builds "<Resource> resource not found".
func UnspecifiedResourceNotFound(resource string) string {
	return fmt.Sprintf("%s resource not found", humanize(resource))
}

// humanize turns "payment_method" into "Payment method".
func humanize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}

	return ""
}
