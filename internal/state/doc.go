// Package state holds the feed listing the Explore view browses.
//
// # Overview
//
// The UI loads feed pages in background commands and folds each result into
// a Store. A Store tracks one listing at a time: the sort (or search query)
// it was started with, the records gathered so far and the cursor of the
// next page.
//
// # Generations
//
// Every Reset starts a new generation. Begin hands out a Request tagged with
// the current generation and Update drops results whose generation is stale,
// so a page that arrives after the user changed the sort never lands in the
// new listing.
//
//	gen := store.Reset(feed.SortHot, "")
//	req, ok := store.Begin()
//	page, err := state.Fetch(ctx, source, req)
//	store.Update(req, page, err)
//
// # Errors
//
// A failed fetch keeps the records already loaded and records the error;
// ConsecutiveFailures counts failures since the last successful page.
package state
