package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Host describes the machine a run happens on.
type Host struct {
	CPUModel        string
	PhysicalCores   int
	LogicalCores    int
	TotalMemory     uint64
	AvailableMemory uint64
}

// DescribeHost collects what gopsutil can tell about this machine. Fields it
// cannot read are left zero.
func DescribeHost() Host {
	h := Host{LogicalCores: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.LogicalCores = n
	}
	if n, err := cpu.Counts(false); err == nil {
		h.PhysicalCores = n
	}
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		h.CPUModel = info[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
		h.AvailableMemory = vm.Available
	}
	return h
}

func (h Host) String() string {
	model := h.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s | cores %d/%d | memory %s free of %s",
		model, h.PhysicalCores, h.LogicalCores, FormatBytes(h.AvailableMemory), FormatBytes(h.TotalMemory))
}

// RecommendedWorkers is the rasterization pool size for this host: one per
// physical core, or per logical core when the physical count is unknown.
func RecommendedWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ProcessRSS returns the resident memory of the current process.
func ProcessRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
