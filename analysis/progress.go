package analysis

import (
	"github.com/kisun-bit/disktriage/model"
	"github.com/kisun-bit/disktriage/util/logger"
)

// Stage 一次分析运行的阶段.
type Stage string

const (
	StageCreated     Stage = "created"
	StageEnumerating Stage = "enumerating"
	StageAnalyzing   Stage = "per_volume_analysis"
	StageAssembling  Stage = "assembling"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
)

// Observer 进度观察者. 仅供信息展示, 管理器的正确性不依赖任何观察者,
// 不注册观察者时运行行为完全一致.
type Observer interface {
	OnStage(stage Stage)
	OnProgress(completed, total int)
	OnVolumeDone(report model.VolumeReport)
}

// nopObserver 缺省观察者.
type nopObserver struct{}

func (nopObserver) OnStage(Stage) {}

func (nopObserver) OnProgress(int, int) {}

func (nopObserver) OnVolumeDone(model.VolumeReport) {}

// LogObserver 将进度写入结构化日志的观察者.
type LogObserver struct{}

func (LogObserver) OnStage(stage Stage) {
	logger.Infof("analysis stage -> %s", stage)
}

func (LogObserver) OnProgress(completed, total int) {
	if total <= 0 {
		return
	}
	logger.Infof("analysis progress %d/%d (%.0f%%)", completed, total, float64(completed)*100/float64(total))
}

func (LogObserver) OnVolumeDone(report model.VolumeReport) {
	if !report.Analyzed {
		logger.Warnf("volume %d not analyzed: %s", report.Volume.Index, report.Error)
		return
	}
	logger.Infof("volume %d done, filesystem=%s encryption=%s",
		report.Volume.Index, report.Volume.Filesystem, report.Encryption.Status)
}
