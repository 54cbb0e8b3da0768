package reconcile

import "errors"

var (
	// ErrDuplicateKey indicates two patched-table records sharing one path
	// identity. Silently picking either risks propagating a wrong size, so
	// this is a hard error rather than last-write-wins.
	ErrDuplicateKey = errors.New("reconcile: duplicate entry key")

	// ErrSizeOverflow indicates a patched size that does not fit the
	// original field's byte width. Truncating would corrupt the entry, so
	// the run aborts instead.
	ErrSizeOverflow = errors.New("reconcile: size exceeds field width")
)
