package info

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/tidwall/sjson"
)

// HostSummaryJSON 采集主机基础信息, 用于分析报告的environment区块.
// 任何单项采集失败仅表现为该项缺失, 不阻断报告生成.
func HostSummaryJSON() string {
	json_ := "{}"
	if hi, err := host.Info(); err == nil {
		json_, _ = sjson.Set(json_, "hostname", hi.Hostname)
		json_, _ = sjson.Set(json_, "os", hi.OS)
		json_, _ = sjson.Set(json_, "platform", hi.Platform+" "+hi.PlatformVersion)
		json_, _ = sjson.Set(json_, "kernel", hi.KernelVersion)
	}
	if cores, err := cpu.Counts(true); err == nil {
		json_, _ = sjson.Set(json_, "logical_cores", cores)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		json_, _ = sjson.Set(json_, "memory_total", vm.Total)
	}
	return json_
}

// DefaultWorkers 默认并发度, 即逻辑核数(至少为1).
func DefaultWorkers() int {
	cores, err := cpu.Counts(true)
	if err != nil || cores < 1 {
		return 1
	}
	return cores
}
