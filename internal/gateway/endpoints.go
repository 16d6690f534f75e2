package gateway

import (
	"strconv"
	"strings"
)

// Backend paths, relative to the API base URL.
const (
	PathTasks         = "/tasks/"
	PathFocusSessions = "/focus-sessions/"
	PathDaySummaries  = "/day-summaries/"
	PathSetting       = "/setting/"

	PathRegister = "/auth/register/"
	PathLogin    = "/auth/login/"
	PathRefresh  = "/auth/refresh/"
	PathMe       = "/auth/me/"
)

// authPrefixes never trigger a refresh: a 401 there is the final answer.
var authPrefixes = []string{"/auth/login", "/auth/register", "/auth/refresh"}

// Detail returns the detail path for id under a collection path.
func Detail(collection string, id int64) string {
	return strings.TrimSuffix(collection, "/") + "/" + strconv.FormatInt(id, 10) + "/"
}

func shouldAttemptRefresh(path string) bool {
	normalized := path
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if i := strings.IndexAny(normalized, "?#"); i >= 0 {
		normalized = normalized[:i]
	}
	for _, p := range authPrefixes {
		if normalized == p || strings.HasPrefix(normalized, p+"/") {
			return false
		}
	}
	return true
}
