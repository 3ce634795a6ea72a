//go:build linux

package source

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// EnumPhysicalDisks 枚举本机可分析的物理磁盘(排除光驱与回环设备).
func EnumPhysicalDisks() ([]PhysicalDisk, error) {
	code, out, errOut := execV1("lsblk -J -b -d -o PATH,SIZE,RM,TYPE,MODEL")
	if code != 0 {
		return nil, errors.Errorf("lsblk exited with %d: %s", code, errOut)
	}
	if !gjson.Valid(out) {
		return nil, errors.New("lsblk produced invalid JSON")
	}
	disks := make([]PhysicalDisk, 0)
	for _, dev := range gjson.Get(out, "blockdevices").Array() {
		if dev.Get("type").String() != "disk" {
			continue
		}
		disks = append(disks, PhysicalDisk{
			Path:      dev.Get("path").String(),
			Size:      dev.Get("size").Int(),
			Removable: dev.Get("rm").Bool(),
			Model:     dev.Get("model").String(),
		})
	}
	return disks, nil
}
