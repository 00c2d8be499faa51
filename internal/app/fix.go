package app

import (
	"fmt"

	"go.uber.org/zap"

	"react-intl-lint/internal/locale"
	"react-intl-lint/internal/reconcile"
	"react-intl-lint/internal/textutil"
)

// fixZombies 删除每个本地来源最终的 unused 僵尸键并改写文件；没有删除任何键的文件不改写。
// sources 与 rep.Sources 一一对应。
func fixZombies(sources []locale.Source, rep *reconcile.Report, log *zap.Logger) ([]FixRecord, []Diagnostic) {
	var fixes []FixRecord
	var diags []Diagnostic
	for i := range sources {
		src := &sources[i]
		keys := rep.Sources[i].Unused
		if len(keys) == 0 {
			continue
		}
		if src.Remote {
			diags = append(diags, Diagnostic{
				Category: "fix",
				Code:     "fix_remote_skipped",
				Path:     src.File,
				Detail:   fmt.Sprintf("远程来源中的 %d 个僵尸键未清理", len(keys)),
			})
			continue
		}
		if n := src.RemoveKeys(keys); n == 0 {
			continue
		}
		if err := src.WriteFile(); err != nil {
			diags = append(diags, Diagnostic{Category: "fix", Code: "fix_write_failed", Path: src.File, Detail: err.Error()})
			continue
		}
		removed := append([]string(nil), keys...)
		fixes = append(fixes, FixRecord{File: src.File, Removed: removed, SHA256: textutil.HashSHA256(src.Doc.Marshal())})
		log.Info("zombie keys removed", zap.String("file", src.File), zap.Int("keys", len(removed)))
	}
	return fixes, diags
}
