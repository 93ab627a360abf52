package crawler

import githubapi "github.com/thep200/git2neo/internal/github_api"

// PageCursor tracks how far into one paged GraphQL connection a unit is.
type PageCursor struct {
	Token       string
	HasNextPage bool
	ItemsSeen   int
}

func InitialCursor() PageCursor {
	return PageCursor{HasNextPage: true}
}

// Advance records a consumed page and reports whether another page should be
// fetched. The limit is only compared here, after a full page, so ItemsSeen
// may overshoot it by up to one page.
func (c *PageCursor) Advance(info githubapi.PageInfo, pageItems, limit int) bool {
	c.Token = info.Cursor()
	// Without an end cursor the next request would restart the connection.
	c.HasNextPage = info.HasNextPage && c.Token != ""
	c.ItemsSeen += pageItems
	return c.HasNextPage && c.ItemsSeen < limit
}

// After is the pagination fragment for the next request.
func (c *PageCursor) After() string {
	return githubapi.AfterFragment(c.Token)
}
