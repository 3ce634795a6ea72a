package source

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// PhysicalDisk 一块候选的物理磁盘.
type PhysicalDisk struct {
	Path      string
	Size      int64
	Removable bool
	Model     string
}

// Repr 返回磁盘的简短描述.
func (d PhysicalDisk) Repr() string {
	removable := ""
	if d.Removable {
		removable = " removable"
	}
	return fmt.Sprintf("%s %s %s%s", d.Path, humanize.IBytes(uint64(d.Size)), d.Model, removable)
}
