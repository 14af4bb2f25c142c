// Package ui provides the Bubble Tea terminal front-end.
//
// # Views
//
// Three views share one header and footer:
//
//   - Explore: the subreddit feed, paged in the background as the selection
//     nears the end. The sort cycles with s and / runs a search.
//   - Downloaded: the catalog, oldest or newest first (o toggles).
//   - Logs: the tail of the application log.
//
// The list views sit beside a detail pane bound to a screen.Screen. Moving
// the selection switches the screen's subject, and the pane renders whatever
// state the screen presents: a progress bar while downloading, a spinner
// while the wallpaper is being set, the failure and a retry hint after an
// error.
//
// # Updates
//
// The model never polls the coordinators. Run subscribes to the screen and
// to the catalog and turns each notification into a message; handlers then
// re-read the latest state, so the view always shows what the screen
// currently presents even when notifications race.
//
// Actions (d, a, x) run in commands so a slow service never blocks input;
// their failures surface in the footer.
//
// # Themes
//
// T cycles Amoled, Nightfox, Kanagawa and Slate. The choice, the feed sort
// and the Downloaded order are saved to the preferences file.
package ui
