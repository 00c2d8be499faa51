package locale

import (
	"fmt"
	"os"
	"path/filepath"
)

// RemoveKeys 从来源的树中删除给定的扁平键，返回删除条数。
// Entries 同步更新，未知键忽略。
func (s *Source) RemoveKeys(keys []string) int {
	if s.Doc == nil || len(keys) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	var paths [][]string
	kept := s.Entries[:0:0]
	for _, e := range s.Entries {
		if _, ok := drop[e.Key]; ok {
			paths = append(paths, e.Path)
			continue
		}
		kept = append(kept, e)
	}
	n := Remove(s.Doc.Root, paths)
	s.Entries = kept
	return n
}

// WriteFile 把树写回原文件，保留文件权限。远程来源不可写。
func (s *Source) WriteFile() error {
	if s.Remote {
		return fmt.Errorf("远程语言来源不可改写：%s", s.File)
	}
	if s.Doc == nil {
		return fmt.Errorf("语言来源未解析：%s", s.File)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.File), "."+filepath.Base(s.File)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(s.Doc.Marshal()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.File); err != nil {
		return fmt.Errorf("rename to %s: %w", s.File, err)
	}
	return nil
}
