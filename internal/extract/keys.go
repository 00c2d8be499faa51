package extract

import "sort"

// UsedKeys 被引用的键集合，key -> 首次出处。
type UsedKeys struct {
	byKey map[string]KeyUsage
}

func NewUsedKeys() *UsedKeys {
	return &UsedKeys{byKey: map[string]KeyUsage{}}
}

// Add 已存在的键不覆盖出处，返回是否新增。
func (u *UsedKeys) Add(k KeyUsage) bool {
	if _, ok := u.byKey[k.Key]; ok {
		return false
	}
	u.byKey[k.Key] = k
	return true
}

func (u *UsedKeys) Has(key string) bool {
	_, ok := u.byKey[key]
	return ok
}

func (u *UsedKeys) Get(key string) (KeyUsage, bool) {
	k, ok := u.byKey[key]
	return k, ok
}

func (u *UsedKeys) Len() int {
	return len(u.byKey)
}

// Keys 排序后的键列表。
func (u *UsedKeys) Keys() []string {
	out := make([]string, 0, len(u.byKey))
	for k := range u.byKey {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
