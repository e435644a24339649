// Package host reads host-level facts that the service reports but does not depend on.
package host

import (
	"fmt"
	"time"

	"github.com/prometheus/procfs"
)

// ProcUptime derives the host uptime from the boot time in <mount>/stat
type ProcUptime struct {
	mountPoint string
	now        func() time.Time
}

// NewProcUptime reads from the given procfs mount point, usually procfs.DefaultMountPoint
func NewProcUptime(mountPoint string) *ProcUptime {
	return &ProcUptime{
		mountPoint: mountPoint,
		now:        time.Now,
	}
}

// SystemUptime returns the time since boot truncated to whole seconds.
// It fails on hosts without a readable procfs.
func (p *ProcUptime) SystemUptime() (time.Duration, error) {
	fs, err := procfs.NewFS(p.mountPoint)
	if err != nil {
		return 0, fmt.Errorf("failed to open procfs at %s: %w", p.mountPoint, err)
	}

	stat, err := fs.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to read kernel stat: %w", err)
	}
	if stat.BootTime == 0 {
		return 0, fmt.Errorf("kernel stat has no boot time")
	}

	uptime := p.now().Sub(time.Unix(int64(stat.BootTime), 0))
	if uptime < 0 {
		return 0, fmt.Errorf("boot time %d is in the future", stat.BootTime)
	}

	return uptime.Truncate(time.Second), nil
}
