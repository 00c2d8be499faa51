package locale

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformed JSON 语法错误。
	ErrMalformed = errors.New("malformed locale json")
	// ErrStructure 语法正确但结构不可用：顶层不是对象、重复成员、扁平化后键冲突。
	ErrStructure = errors.New("invalid locale structure")
)

// Node 保序的 JSON 树。对象节点持有 Members，其余值是叶子，Raw 保存紧凑后的原始 JSON 文本。
type Node struct {
	Members []Member
	Raw     json.RawMessage
}

type Member struct {
	Name  string
	Value *Node
}

func (n *Node) IsObject() bool {
	return n != nil && n.Raw == nil
}

func (n *Node) member(name string) (int, *Node) {
	for i, m := range n.Members {
		if m.Name == name {
			return i, m.Value
		}
	}
	return -1, nil
}

// Document 一个语言文件：树加上重写时要保留的排版信息。
type Document struct {
	Root            *Node
	Indent          string
	Newline         string
	TrailingNewline bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseDocument 解析语言文件，顶层必须是对象。
func ParseDocument(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	dec := json.NewDecoder(bytes.NewReader(data))
	var top json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: 顶层对象之后存在多余内容", ErrMalformed)
	}
	root, err := parseValue(top, "")
	if err != nil {
		return nil, err
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: 顶层必须是 JSON 对象", ErrStructure)
	}
	newline := "\n"
	if bytes.Contains(data, []byte("\r\n")) {
		newline = "\r\n"
	}
	trimmed := bytes.TrimRight(data, " \t")
	return &Document{
		Root:            root,
		Indent:          detectIndent(data),
		Newline:         newline,
		TrailingNewline: bytes.HasSuffix(trimmed, []byte("\n")),
	}, nil
}

func parseValue(raw json.RawMessage, at string) (*Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return &Node{Raw: json.RawMessage(buf.Bytes())}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	n := &Node{Members: []Member{}}
	seen := map[string]struct{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: 对象成员名不是字符串", ErrMalformed)
		}
		path := joinKey(at, name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: 重复的键 %q", ErrStructure, path)
		}
		seen[name] = struct{}{}
		var child json.RawMessage
		if err := dec.Decode(&child); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		v, err := parseValue(child, path)
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, Member{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return n, nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func detectIndent(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		ws := line[:len(line)-len(trimmed)]
		if ws[0] == '\t' {
			return "\t"
		}
		return strings.Repeat(" ", len(ws)-len(strings.TrimLeft(ws, " ")))
	}
	return "  "
}

// LeafValue 叶子的文本值：字符串取解码后的内容，null 为空串，其余保留紧凑 JSON 文本。
func LeafValue(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Marshal 按原文件的缩进与换行风格写回。
func (d *Document) Marshal() []byte {
	indent := d.Indent
	if indent == "" {
		indent = "  "
	}
	var buf bytes.Buffer
	writeNode(&buf, d.Root, indent, 0)
	if d.TrailingNewline {
		buf.WriteByte('\n')
	}
	out := buf.Bytes()
	if d.Newline == "\r\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	return out
}

func writeNode(buf *bytes.Buffer, n *Node, indent string, depth int) {
	if !n.IsObject() {
		if len(n.Raw) > 0 && n.Raw[0] == '[' {
			if err := json.Indent(buf, n.Raw, strings.Repeat(indent, depth), indent); err == nil {
				return
			}
		}
		buf.Write(n.Raw)
		return
	}
	if len(n.Members) == 0 {
		buf.WriteString("{}")
		return
	}
	buf.WriteString("{\n")
	for i, m := range n.Members {
		buf.WriteString(strings.Repeat(indent, depth+1))
		buf.Write(quote(m.Name))
		buf.WriteString(": ")
		writeNode(buf, m.Value, indent, depth+1)
		if i < len(n.Members)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(indent, depth))
	buf.WriteByte('}')
}

func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
