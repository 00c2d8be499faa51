package locale

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry 扁平化后的一条翻译。Path 保留原始成员名，成员名自身含点号时也能精确定位；
// Raw 是叶子的原始 JSON 文本，重建时优先使用。
type Entry struct {
	Key      string
	Path     []string
	Value    string
	Raw      json.RawMessage
	Language string
	File     string
	// EmptyObject 标记空对象（如 "common": {}），不是翻译，只用于重建。
	EmptyObject bool
}

// Flatten 把嵌套对象展开为点号键，顺序与文件中出现的顺序一致。
// 非顶层的空对象产生 EmptyObject 标记条目；两个成员展开到同一个键视为结构错误。
func Flatten(root *Node) ([]Entry, error) {
	var out []Entry
	seen := map[string]struct{}{}
	add := func(path []string, e Entry) error {
		key := strings.Join(path, ".")
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: 键 %q 在扁平化后重复", ErrStructure, key)
		}
		seen[key] = struct{}{}
		e.Key = key
		e.Path = append([]string(nil), path...)
		out = append(out, e)
		return nil
	}
	var walk func(n *Node, path []string) error
	walk = func(n *Node, path []string) error {
		if !n.IsObject() {
			return add(path, Entry{Value: LeafValue(n.Raw), Raw: n.Raw})
		}
		if len(n.Members) == 0 && len(path) > 0 {
			return add(path, Entry{EmptyObject: true})
		}
		for _, m := range n.Members {
			if err := walk(m.Value, append(path, m.Name)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Translations 去掉 EmptyObject 标记，只留翻译条目。
func Translations(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.EmptyObject {
			out = append(out, e)
		}
	}
	return out
}

// Unflatten 按条目顺序重建嵌套树；没有 Raw 的条目按字符串写入，EmptyObject 条目重建为空对象。
func Unflatten(entries []Entry) (*Node, error) {
	root := &Node{Members: []Member{}}
	for _, e := range entries {
		path := e.Path
		if len(path) == 0 {
			path = strings.Split(e.Key, ".")
		}
		cur := root
		for i, name := range path {
			last := i == len(path)-1
			_, child := cur.member(name)
			if last {
				if child != nil {
					return nil, fmt.Errorf("%w: 键 %q 重复", ErrStructure, e.Key)
				}
				if e.EmptyObject {
					cur.Members = append(cur.Members, Member{Name: name, Value: &Node{Members: []Member{}}})
					break
				}
				raw := e.Raw
				if len(raw) == 0 {
					raw = quote(e.Value)
				}
				cur.Members = append(cur.Members, Member{Name: name, Value: &Node{Raw: raw}})
				break
			}
			if child == nil {
				child = &Node{Members: []Member{}}
				cur.Members = append(cur.Members, Member{Name: name, Value: child})
			}
			if !child.IsObject() {
				return nil, fmt.Errorf("%w: 键 %q 与已有叶子冲突", ErrStructure, e.Key)
			}
			cur = child
		}
	}
	return root, nil
}

// Remove 删除给定路径的叶子，并剪掉因删除而变空的父对象；原本就为空的对象保持不动。
// 返回实际删除的条目数，路径不存在时忽略。
func Remove(root *Node, paths [][]string) int {
	removed := 0
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if ok, _ := removeAt(root, p); ok {
			removed++
		}
	}
	return removed
}

func removeAt(n *Node, path []string) (removed bool, emptied bool) {
	if !n.IsObject() {
		return false, false
	}
	idx, child := n.member(path[0])
	if child == nil {
		return false, false
	}
	if len(path) == 1 {
		if child.IsObject() {
			return false, false
		}
		n.Members = append(n.Members[:idx], n.Members[idx+1:]...)
		return true, len(n.Members) == 0
	}
	removed, childEmptied := removeAt(child, path[1:])
	if childEmptied {
		n.Members = append(n.Members[:idx], n.Members[idx+1:]...)
	}
	return removed, removed && len(n.Members) == 0
}
