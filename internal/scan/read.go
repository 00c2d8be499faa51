package scan

import (
	"context"
	"fmt"
	"io"
	"os"

	"react-intl-lint/internal/textutil"
	"react-intl-lint/internal/worker"
)

// File 已解码的源码文件。
type File struct {
	Path     string
	Text     string
	Encoding string
}

type ReadOptions struct {
	MaxFileSize int64
	Pool        *worker.Pool
	// OnFile 每个文件的结果回调（read/skipped/failed），可为空。
	OnFile func(outcome string)
}

type readSlot struct {
	file    *File
	err     *ScanError
	skipped bool
}

// Read 并发读取并解码文件；返回顺序与 paths 一致。
// 超限、二进制、编码无法识别、读取失败都只产生 ScanError。
func Read(ctx context.Context, paths []string, opts ReadOptions) ([]File, []ScanError, error) {
	slots := make([]readSlot, len(paths))
	err := opts.Pool.Each(ctx, len(paths), func(_ context.Context, i int) {
		slots[i] = readFile(paths[i], opts.MaxFileSize)
	})
	if err != nil {
		return nil, nil, err
	}
	files := make([]File, 0, len(paths))
	var errs []ScanError
	for i, s := range slots {
		outcome := "read"
		if s.err == nil && s.file == nil {
			// 任务 panic 后槽位为空
			s.err = &ScanError{Code: "file_read_failed", Path: paths[i], Detail: "读取任务异常终止"}
		}
		switch {
		case s.err != nil:
			errs = append(errs, *s.err)
			outcome = "failed"
			if s.skipped {
				outcome = "skipped"
			}
		case s.file != nil:
			files = append(files, *s.file)
		}
		if opts.OnFile != nil {
			opts.OnFile(outcome)
		}
	}
	return files, errs, nil
}

var readFile = readOne

func readOne(path string, maxSize int64) readSlot {
	f, err := os.Open(path)
	if err != nil {
		return readSlot{err: &ScanError{Code: "file_open_failed", Path: path, Detail: err.Error()}}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return readSlot{err: &ScanError{Code: "file_stat_failed", Path: path, Detail: err.Error()}}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return readSlot{skipped: true, err: &ScanError{
			Code:   "file_too_large",
			Path:   path,
			Detail: fmt.Sprintf("文件大小 %d 超过上限 %d", info.Size(), maxSize),
		}}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return readSlot{err: &ScanError{Code: "file_read_failed", Path: path, Detail: err.Error()}}
	}
	if textutil.DetectBinary(data) {
		return readSlot{skipped: true, err: &ScanError{Code: "binary_file_skipped", Path: path, Detail: "检测为二进制文件"}}
	}
	dec, err := textutil.Decode(data)
	if err != nil {
		return readSlot{err: &ScanError{Code: "decode_failed", Path: path, Detail: err.Error()}}
	}
	return readSlot{file: &File{Path: path, Text: dec.Text, Encoding: dec.Encoding}}
}
