package screen

import (
	"github.com/droidheat/amoled/internal/apply"
	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/download"
)

// Kind is the presented state of a wallpaper view.
type Kind int

const (
	NotDownloaded Kind = iota
	Downloading
	DownloadFailed
	ReadyToApply
	Applying
	Applied
	ApplyFailed
)

func (k Kind) String() string {
	switch k {
	case Downloading:
		return "downloading"
	case DownloadFailed:
		return "download failed"
	case ReadyToApply:
		return "ready to apply"
	case Applying:
		return "applying"
	case Applied:
		return "applied"
	case ApplyFailed:
		return "apply failed"
	default:
		return "not downloaded"
	}
}

// CanDownload reports whether starting (or retrying) a download is offered.
func (k Kind) CanDownload() bool {
	return k == NotDownloaded || k == DownloadFailed
}

// CanApply reports whether applying (or retrying) is offered.
func (k Kind) CanApply() bool {
	return k == ReadyToApply || k == ApplyFailed
}

// CanRemove reports whether the downloaded file may be deleted.
func (k Kind) CanRemove() bool {
	return k == ReadyToApply || k == Applied || k == ApplyFailed
}

// State is what a view renders. Percent is set while downloading, Path once
// a file is available, Failure and Err in the failed kinds.
type State struct {
	Kind    Kind
	Percent int
	Path    string
	Failure download.Status
	Err     error
}

// Derive maps coordinator states and the catalog lookup for the subject to
// a presented State. Apply progress wins over download progress, which wins
// over what the catalog already holds.
func Derive(d download.State, a apply.State, entry catalog.Entry, found bool) State {
	path := ""
	switch {
	case d.Status == download.StatusComplete:
		path = d.Path
	case found:
		path = entry.Path
	}
	if a.Path != "" {
		path = a.Path
	}

	switch a.Status {
	case apply.StatusApplying:
		return State{Kind: Applying, Path: path}
	case apply.StatusApplied:
		return State{Kind: Applied, Path: path}
	case apply.StatusError:
		return State{Kind: ApplyFailed, Path: path, Err: a.Err}
	}

	switch d.Status {
	case download.StatusDownloading:
		return State{Kind: Downloading, Percent: d.Percent}
	case download.StatusErrorStarting, download.StatusErrorFinishing:
		return State{Kind: DownloadFailed, Failure: d.Status, Err: d.Err}
	case download.StatusComplete:
		return State{Kind: ReadyToApply, Path: d.Path}
	}

	if found {
		return State{Kind: ReadyToApply, Path: entry.Path}
	}
	return State{Kind: NotDownloaded}
}
