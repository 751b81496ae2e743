//go:build !windows

package reversal

import "errors"

// NewLiveSnapshot is only available on Windows.
func NewLiveSnapshot(bool) (Snapshot, error) {
	return nil, errors.New("live snapshots require Windows; declare a snapshot in the project file instead")
}
