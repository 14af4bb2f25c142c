// Package feed reads wallpaper posts from the subreddit JSON listing.
//
// The Client fetches one page at a time (hot, new, or top over a window, or
// a search) and keeps only posts usable as phone wallpapers: direct jpg/png
// links, not galleries, not NSFW, not requests or meta posts, and at least
// 600x1400 pixels. Titles lose bracketed fragments and non-ASCII text.
//
// Pages chain through the listing's "after" cursor:
//
//	page, err := client.Page(ctx, feed.SortHot, feed.Cursor{})
//	next, err := client.Page(ctx, feed.SortHot, page.Next())
package feed
