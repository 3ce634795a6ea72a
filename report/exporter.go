// Package report 将分析报告序列化为JSON/CSV.
// 序列化只读取报告, 不回写, 同一报告可被多次导出.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/kisun-bit/disktriage/model"
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// ExportJSON 导出完整报告.
func ExportJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encode report json")
	}
	return nil
}

// Summary 组装单行JSON摘要, 便于日志与批量汇总.
func Summary(r *model.Report) string {
	s := "{}"
	s, _ = sjson.Set(s, "source", r.SourcePath)
	s, _ = sjson.Set(s, "kind", r.SourceKind)
	s, _ = sjson.Set(s, "size", humanize.IBytes(uint64(r.SourceSize)))
	s, _ = sjson.Set(s, "scheme", r.Scheme)
	s, _ = sjson.Set(s, "volumes", len(r.Volumes))
	s, _ = sjson.Set(s, "files", r.TotalFiles())
	s, _ = sjson.Set(s, "directories", r.TotalDirectories())
	s, _ = sjson.Set(s, "elapsed", r.FinishedAt.Sub(r.StartedAt).String())

	encrypted, unanalyzed := 0, 0
	for _, vr := range r.Volumes {
		if !vr.Analyzed {
			unanalyzed++
			continue
		}
		if vr.Encryption.Status == model.StatusEncrypted ||
			vr.Encryption.Status == model.StatusPartiallyEncrypted {
			encrypted++
		}
	}
	s, _ = sjson.Set(s, "encrypted_volumes", encrypted)
	s, _ = sjson.Set(s, "unanalyzed_volumes", unanalyzed)
	return s
}

var volumeCSVHeader = []string{
	"index", "offset", "length", "size", "type", "filesystem",
	"encryption_status", "algorithm", "version", "confidence", "source",
	"files", "directories", "skipped", "analyzed", "error",
}

// ExportVolumesCSV 导出卷级摘要, 每卷一行, 行序即枚举序.
func ExportVolumesCSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(volumeCSVHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, vr := range r.Volumes {
		files, dirs, skipped := 0, 0, 0
		if vr.Metadata != nil {
			files = vr.Metadata.TotalFiles
			dirs = vr.Metadata.TotalDirectories
			skipped = len(vr.Metadata.Skipped)
		}
		row := []string{
			strconv.Itoa(vr.Volume.Index),
			strconv.FormatInt(vr.Volume.Offset, 10),
			strconv.FormatInt(vr.Volume.Length, 10),
			humanize.IBytes(uint64(vr.Volume.Length)),
			vr.Volume.TypeDesc,
			vr.Volume.Filesystem.String(),
			string(vr.Encryption.Status),
			vr.Encryption.Algorithm,
			vr.Encryption.Version,
			string(vr.Encryption.Confidence),
			string(vr.Encryption.Source),
			strconv.Itoa(files),
			strconv.Itoa(dirs),
			strconv.Itoa(skipped),
			strconv.FormatBool(vr.Analyzed),
			vr.Error,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row for volume %d", vr.Volume.Index)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

var fileCSVHeader = []string{
	"volume", "path", "size", "modified_at", "attributes", "is_dir",
}

// ExportFilesCSV 导出全部卷的文件清单, 树序(父目录先于子目录)展开.
func ExportFilesCSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fileCSVHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, vr := range r.Volumes {
		if vr.Metadata == nil || vr.Metadata.Root == nil {
			continue
		}
		if err := writeNodeRows(cw, vr.Volume.Index, vr.Metadata.Root); err != nil {
			return err
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func writeNodeRows(cw *csv.Writer, volIndex int, node *model.DirectoryNode) error {
	for _, fe := range node.Files {
		modified := ""
		if !fe.ModifiedAt.IsZero() {
			modified = fe.ModifiedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		row := []string{
			strconv.Itoa(volIndex),
			fe.Path,
			strconv.FormatInt(fe.Size, 10),
			modified,
			fe.Attributes,
			strconv.FormatBool(fe.IsDir),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row for %s", fe.Path)
		}
	}
	for _, sub := range node.Subdirs {
		if err := writeNodeRows(cw, volIndex, sub); err != nil {
			return err
		}
	}
	return nil
}
