package errors

import "net/http"

// RetryableStatus reports whether a request that failed with status may
// succeed if repeated unchanged.
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// StatusHint suggests a fix for statuses with a usual cause. It returns ""
// when there is nothing useful to say.
func StatusHint(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "check the username and password, or run 'nxraw auth login'"
	case http.StatusForbidden:
		return "the account lacks permission on this repository"
	case http.StatusNotFound:
		return "check the Nexus URL and repository name"
	case http.StatusRequestEntityTooLarge:
		return "a proxy in front of Nexus limits the request size"
	case http.StatusTooManyRequests:
		return "lower --rate-limit"
	default:
		return ""
	}
}
