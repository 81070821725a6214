package service

import (
	"strings"
)

// Logical data paths behind the dashboard pages.
const (
	RegulationsPath = "/api/regulations"
	GovernancePath  = "/api/governance"
	ResourcesPath   = "/api/resources"
	FeedbackPath    = "/api/feedback"
)

// Page is one entry of the dashboard route table.
type Page struct {
	Name string
	Path string
	// DataPath is the logical path the page reads. Empty for pages without data.
	DataPath string
}

// NotFoundPage is returned for paths outside the route table.
var NotFoundPage = Page{Name: "NotFound"}

var pages = []Page{
	{Name: "Dashboard", Path: "/", DataPath: RegulationsPath},
	{Name: "Governance", Path: "/governance", DataPath: GovernancePath},
	{Name: "Resources", Path: "/resources", DataPath: ResourcesPath},
	{Name: "Feedback", Path: "/feedback"},
}

// Pages returns a copy of the route table.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// Match finds the page for route. basePath is stripped first when route
// carries it. A trailing slash is ignored.
func Match(route, basePath string) (Page, bool) {
	if basePath != "" && (route == basePath || strings.HasPrefix(route, basePath+"/")) {
		route = strings.TrimPrefix(route, basePath)
	}
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		route = "/"
	}
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}

	for _, p := range pages {
		if p.Path == route {
			return p, true
		}
	}
	return NotFoundPage, false
}
