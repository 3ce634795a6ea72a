// Package analysis 实现按卷编排的分析管理器.
// 单卷故障被限制在该卷的结果槽内, 任何一个坏卷都不能中断整次运行.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kisun-bit/disktriage/crypto"
	"github.com/kisun-bit/disktriage/disk/filesystem"
	"github.com/kisun-bit/disktriage/disk/source"
	"github.com/kisun-bit/disktriage/disk/table"
	"github.com/kisun-bit/disktriage/metadata"
	"github.com/kisun-bit/disktriage/model"
	"github.com/kisun-bit/disktriage/sys/info"
	"github.com/kisun-bit/disktriage/util/basic"
	"github.com/kisun-bit/disktriage/util/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

// Request 一次分析运行的输入.
type Request struct {
	SourcePath string
	Chain      crypto.DetectionChain
	// ScanMetadata 为true时对可识别文件系统的卷执行元数据扫描.
	ScanMetadata bool
	ScanOptions  metadata.Options
	// VolumeIndexes 限定分析的卷序号集(枚举序号). 空集表示全部卷.
	VolumeIndexes []int
	// Workers 卷级并发数, 非正值取逻辑核数.
	Workers int
	// VolumeTimeout 单卷分析超时, 超时卷按单卷故障隔离处理. 零值不限时.
	VolumeTimeout time.Duration
	Observer      Observer
}

// Manager 分析管理器. 一个Manager实例对应一次运行.
type Manager struct {
	mu    sync.Mutex
	stage Stage
}

func NewManager() *Manager {
	return &Manager{stage: StageCreated}
}

// Stage 返回当前运行阶段.
func (m *Manager) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

func (m *Manager) setStage(stage Stage, ob Observer) {
	m.mu.Lock()
	m.stage = stage
	m.mu.Unlock()
	ob.OnStage(stage)
}

// Run 执行完整分析: 枚举卷 -> 按卷并发分析 -> 按枚举序组装报告.
// 仅数据源打开失败与分区表枚举失败是致命错误; 其余故障都落在对应卷的
// 结果槽内. 取消在卷边界处生效, 未开始的卷记为取消, 已在途的卷完成收尾,
// 已得到的结果仍会组装进报告.
func (m *Manager) Run(ctx context.Context, req Request) (*model.Report, error) {
	ob := req.Observer
	if ob == nil {
		ob = nopObserver{}
	}
	startedAt := time.Now()

	m.setStage(StageEnumerating, ob)
	src, err := source.Open(req.SourcePath)
	if err != nil {
		m.setStage(StageFailed, ob)
		return nil, errors.Wrap(err, "open analysis source")
	}
	defer func() {
		_ = src.Close()
	}()

	scheme, vols, err := table.Enumerate(src, src.Size())
	if err != nil {
		m.setStage(StageFailed, ob)
		return nil, errors.Wrap(err, "enumerate source volumes")
	}
	logger.Infof("source %s: scheme=%s volumes=%d size=%d", src.Path(), scheme, len(vols), src.Size())

	if len(req.VolumeIndexes) > 0 {
		selected := make([]table.Volume, 0, len(vols))
		for _, v := range vols {
			if funk.ContainsInt(req.VolumeIndexes, v.Index) {
				selected = append(selected, v)
			}
		}
		vols = selected
	}

	m.setStage(StageAnalyzing, ob)
	reports := make([]model.VolumeReport, len(vols))
	var completed int32

	workers := req.Workers
	if workers <= 0 {
		workers = info.DefaultWorkers()
	}
	// 每卷一个任务, 任务只写自己的结果槽, 组装点之外无需跨任务同步.
	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(workers, func(i interface{}) {
		defer wg.Done()
		idx := i.(int)
		reports[idx] = m.analyzeVolume(ctx, req, src, vols[idx])
		ob.OnVolumeDone(reports[idx])
		ob.OnProgress(int(atomic.AddInt32(&completed, 1)), len(vols))
	})
	if err != nil {
		m.setStage(StageFailed, ob)
		return nil, errors.Wrap(err, "init volume analysis pool")
	}
	defer pool.Release()

	for idx := range vols {
		if basic.Cancelled(ctx) {
			reports[idx] = cancelledReport(vols[idx])
			ob.OnVolumeDone(reports[idx])
			ob.OnProgress(int(atomic.AddInt32(&completed, 1)), len(vols))
			continue
		}
		wg.Add(1)
		if err = pool.Invoke(idx); err != nil {
			wg.Done()
			reports[idx] = model.VolumeReport{
				Volume:   modelVolume(vols[idx], filesystem.Unknown),
				Analyzed: false,
				Error:    errors.Wrap(err, "dispatch volume task").Error(),
			}
			ob.OnVolumeDone(reports[idx])
			ob.OnProgress(int(atomic.AddInt32(&completed, 1)), len(vols))
		}
	}
	wg.Wait()

	m.setStage(StageAssembling, ob)
	report := &model.Report{
		SourcePath: src.Path(),
		SourceKind: src.Kind(),
		SourceSize: src.Size(),
		Scheme:     string(scheme),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Volumes:    reports,
	}
	report.Environment = []byte(info.HostSummaryJSON())

	m.setStage(StageCompleted, ob)
	return report, nil
}

// analyzeVolume 单卷分析: 文件系统探测 -> 加密检测链 -> 元数据扫描.
// panic与错误都收敛为该卷的结果, 绝不外溢到其它卷.
func (m *Manager) analyzeVolume(ctx context.Context, req Request, src *source.Source, vol table.Volume) (vr model.VolumeReport) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("volume %d analysis panicked: %v", vol.Index, r)
			vr = model.VolumeReport{
				Volume:   modelVolume(vol, filesystem.Unknown),
				Analyzed: false,
				Error:    fmt.Sprintf("analysis panicked: %v", r),
			}
		}
	}()

	volCtx := ctx
	if req.VolumeTimeout > 0 {
		var cancel context.CancelFunc
		volCtx, cancel = context.WithTimeout(ctx, req.VolumeTimeout)
		defer cancel()
	}

	section := src.Section(vol.Offset, vol.Length)
	fsType := filesystem.Probe(section)
	mv := modelVolume(vol, fsType)

	finding := req.Chain.Run(volCtx, section, vol.Length, fsType.Recognized())
	vr = model.VolumeReport{Volume: mv, Encryption: finding, Analyzed: true}

	if !req.ScanMetadata || !fsType.Recognized() {
		return vr
	}
	walker, closeWalker, err := metadata.OpenWalker(fsType, src.Section(vol.Offset, vol.Length))
	if err != nil {
		if errors.Is(err, metadata.ErrUnsupportedFilesystem) {
			logger.Debugf("volume %d: %v", vol.Index, err)
			return vr
		}
		vr.Error = errors.Wrap(err, "open metadata walker").Error()
		return vr
	}
	defer func() {
		_ = closeWalker()
	}()

	scan, err := metadata.Scan(volCtx, walker, req.ScanOptions)
	if err != nil {
		// 扫描失败不推翻已得出的加密结论, 只作为部分失败记录.
		vr.Error = errors.Wrap(err, "metadata scan").Error()
		return vr
	}
	vr.Metadata = scan
	return vr
}

func modelVolume(vol table.Volume, fsType filesystem.Type) model.Volume {
	return model.Volume{
		Index:      vol.Index,
		Offset:     vol.Offset,
		Length:     vol.Length,
		TypeDesc:   vol.TypeDesc,
		Name:       vol.Name,
		Filesystem: fsType,
	}
}

func cancelledReport(vol table.Volume) model.VolumeReport {
	return model.VolumeReport{
		Volume:   modelVolume(vol, filesystem.Unknown),
		Analyzed: false,
		Error:    "analysis cancelled before volume start",
	}
}
