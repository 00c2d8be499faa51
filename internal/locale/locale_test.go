package locale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/worker"
)

const nested = `{
  "common": {
    "save": "Save",
    "html": "<b>x</b>",
    "accent": "café"
  },
  "list": [
    1,
    2
  ],
  "count": 3,
  "nothing": null
}
`

func newPool(t *testing.T) *worker.Pool {
	t.Helper()
	p, err := worker.New("locale-test", 4, nil)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestDocumentRoundTrip(t *testing.T) {
	doc, err := ParseDocument([]byte(nested))
	require.NoError(t, err)
	assert.Equal(t, "  ", doc.Indent)
	assert.True(t, doc.TrailingNewline)
	assert.Equal(t, nested, string(doc.Marshal()))
}

func TestDocumentIndentStyles(t *testing.T) {
	cases := map[string]string{
		"tab":    "{\n\t\"a\": {\n\t\t\"b\": \"x\"\n\t}\n}",
		"four":   "{\n    \"a\": {\n        \"b\": \"x\"\n    }\n}\n",
		"crlf":   "{\r\n  \"a\": \"x\"\r\n}\r\n",
		"empty":  "{}\n",
		"single": "{\n  \"a\": \"x\"\n}",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(in))
			require.NoError(t, err)
			assert.Equal(t, in, string(doc.Marshal()))
		})
	}
}

func TestFlattenValues(t *testing.T) {
	doc, err := ParseDocument([]byte(nested))
	require.NoError(t, err)
	entries, err := Flatten(doc.Root)
	require.NoError(t, err)

	got := map[string]string{}
	var order []string
	for _, e := range entries {
		got[e.Key] = e.Value
		order = append(order, e.Key)
	}
	assert.Equal(t, []string{"common.save", "common.html", "common.accent", "list", "count", "nothing"}, order)
	assert.Equal(t, "Save", got["common.save"])
	assert.Equal(t, "<b>x</b>", got["common.html"])
	assert.Equal(t, "café", got["common.accent"])
	assert.Equal(t, "[1,2]", got["list"])
	assert.Equal(t, "3", got["count"])
	assert.Equal(t, "", got["nothing"])
}

func TestFlattenEmptyObjects(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"common":{},"a":{"b":{},"c":"x"}}`))
	require.NoError(t, err)
	entries, err := Flatten(doc.Root)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].EmptyObject)
	assert.Equal(t, "common", entries[0].Key)
	assert.True(t, entries[1].EmptyObject)
	assert.Equal(t, "a.b", entries[1].Key)

	kept := Translations(entries)
	require.Len(t, kept, 1)
	assert.Equal(t, "a.c", kept[0].Key)

	src, f := Parse([]byte(`{"common":{}}`), "fr.json", "fr")
	require.Nil(t, f)
	assert.Empty(t, src.Entries)
}

func TestUnflattenRoundTrip(t *testing.T) {
	inputs := []string{
		nested,
		"{\n  \"common\": {}\n}\n",
		"{\n  \"a\": {\n    \"b\": {},\n    \"c\": \"x\"\n  },\n  \"d\": {}\n}\n",
	}
	for _, in := range inputs {
		doc, err := ParseDocument([]byte(in))
		require.NoError(t, err)
		entries, err := Flatten(doc.Root)
		require.NoError(t, err)

		root, err := Unflatten(entries)
		require.NoError(t, err)
		rebuilt := &Document{Root: root, Indent: doc.Indent, Newline: doc.Newline, TrailingNewline: doc.TrailingNewline}
		assert.Equal(t, in, string(rebuilt.Marshal()))
	}

	plain, err := Unflatten([]Entry{{Key: "a.b", Value: "x"}, {Key: "a.c", Value: "y"}})
	require.NoError(t, err)
	out := (&Document{Root: plain}).Marshal()
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": \"x\",\n    \"c\": \"y\"\n  }\n}", string(out))

	_, err = Unflatten([]Entry{{Key: "a", Value: "x"}, {Key: "a.b", Value: "y"}})
	assert.ErrorIs(t, err, ErrStructure)
}

func TestParseFailures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		code string
	}{
		{"malformed", `{"a": "x",}`, CodeParseFailed},
		{"truncated", `{"a": {"b": "x"}`, CodeParseFailed},
		{"trailing", `{"a": "x"} {}`, CodeParseFailed},
		{"top array", `["a"]`, CodeStructureInvalid},
		{"duplicate", `{"a": {"b": "x", "b": "y"}}`, CodeStructureInvalid},
		{"collision", `{"a.b": "x", "a": {"b": "y"}}`, CodeStructureInvalid},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, f := Parse([]byte(c.in), "x.json", "x")
			require.NotNil(t, f)
			assert.Equal(t, c.code, f.Code)
			assert.Equal(t, "x.json", f.Path)
		})
	}

	src, f := Parse([]byte("\xEF\xBB\xBF{\"a\":\"x\"}"), "bom.json", "bom")
	require.Nil(t, f)
	require.Len(t, src.Entries, 1)
	assert.Equal(t, "bom", src.Entries[0].Language)
}

func TestRemovePrunesEmptiedParents(t *testing.T) {
	in := `{
  "keep": {},
  "old": {
    "legacy": "x"
  },
  "dotted.name": "y",
  "common": {
    "save": "Save",
    "gone": "z"
  }
}
`
	src, f := Parse([]byte(in), "en.json", "en")
	require.Nil(t, f)
	n := src.RemoveKeys([]string{"old.legacy", "dotted.name", "common.gone", "not.there"})
	assert.Equal(t, 3, n)
	assert.Equal(t, `{
  "keep": {},
  "common": {
    "save": "Save"
  }
}
`, string(src.Doc.Marshal()))
	require.Len(t, src.Entries, 1)
	assert.Equal(t, "common.save", src.Entries[0].Key)

	assert.Equal(t, 0, src.RemoveKeys([]string{"old.legacy"}))
}

func TestLanguageCode(t *testing.T) {
	cases := map[string]string{
		"/app/i18n/fr.json":                          "fr",
		"en-US.json":                                 "en-US",
		"https://cdn.example.com/locales/de.json":    "de",
		"https://cdn.example.com/locales/pt?v=2":     "pt",
		"http://cdn.example.com/":                    "cdn.example.com",
		"HTTPS://cdn.example.com/locales/EN-eu.json": "EN-eu",
	}
	for in, want := range cases {
		assert.Equal(t, want, LanguageCode(in), in)
	}
	assert.True(t, IsRemote(" https://x/y.json"))
	assert.False(t, IsRemote("./https.json"))
}

func TestLoadLocal(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "i18n")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"common":{"save":"Save"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.json"), []byte(`{"common":{}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"common":`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.json"), []byte(`{}`), 0o644))

	res, err := Load(context.Background(), Options{
		Specs:          []string{"i18n/*.json"},
		IgnorePatterns: []string{"**/skip.json"},
		CWD:            tmp,
		Pool:           newPool(t),
	})
	require.NoError(t, err)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "en", res.Sources[0].Language)
	assert.Equal(t, "fr", res.Sources[1].Language)
	assert.Len(t, res.Sources[0].Entries, 1)
	assert.Empty(t, res.Sources[1].Entries)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), res.Sources[0].Mode)
	}
	require.Len(t, res.Failures, 1)
	assert.Equal(t, CodeParseFailed, res.Failures[0].Code)
}

func TestLoadRemoteRetryAndIsolation(t *testing.T) {
	var flaky atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky/de.json":
			if flaky.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			if r.Header.Get("X-Token") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"common":{"save":"Speichern"}}`))
		case "/bad/es.json":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	res, err := Load(context.Background(), Options{
		Specs: []string{srv.URL + "/flaky/de.json", srv.URL + "/missing/it.json", srv.URL + "/bad/es.json"},
		Fetch: rules.FetchSettings{TimeoutMs: 2000, Retries: 2, Headers: map[string]string{"X-Token": "secret"}},
		Pool:  newPool(t),
	})
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	src := res.Sources[0]
	assert.Equal(t, "de", src.Language)
	assert.True(t, src.Remote)
	assert.Equal(t, "Speichern", src.Entries[0].Value)
	assert.Equal(t, int32(2), flaky.Load())

	codes := map[string]string{}
	for _, f := range res.Failures {
		codes[f.Path] = f.Code
	}
	assert.Equal(t, CodeFetchFailed, codes[srv.URL+"/missing/it.json"])
	assert.Equal(t, CodeParseFailed, codes[srv.URL+"/bad/es.json"])
}

func TestWriteFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "en.json")
	require.NoError(t, os.WriteFile(path, []byte("{\n\t\"a\": \"x\",\n\t\"b\": \"y\"\n}\n"), 0o640))

	res, err := Load(context.Background(), Options{Specs: []string{path}, CWD: tmp, Pool: newPool(t)})
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	src := res.Sources[0]
	require.Equal(t, 1, src.RemoveKeys([]string{"b"}))
	require.NoError(t, src.WriteFile())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"a\": \"x\"\n}\n", string(b))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}

	remote := Source{File: "https://x/en.json", Remote: true, Doc: src.Doc}
	assert.Error(t, remote.WriteFile())
}

func TestLoadPanickedTaskIsFailure(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "i18n")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"a":"x"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.json"), []byte(`{"a":"y"}`), 0o644))

	orig := loadLocalFile
	loadLocalFile = func(file string) loadSlot {
		if filepath.Base(file) == "fr.json" {
			panic("load failed")
		}
		return orig(file)
	}
	t.Cleanup(func() { loadLocalFile = orig })

	res, err := Load(context.Background(), Options{Specs: []string{"i18n/*.json"}, CWD: tmp, Pool: newPool(t)})
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "en", res.Sources[0].Language)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, CodeReadFailed, res.Failures[0].Code)
	assert.Equal(t, filepath.Join(dir, "fr.json"), res.Failures[0].Path)
}
