package editor

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WorkspaceScanner", func() {
	var (
		userDir string
		project string
		scanner *WorkspaceScanner
		ctx     context.Context
	)

	// workspace creates workspaceStorage/<name> with the given mtime.
	workspace := func(name string, age time.Duration) string {
		dir := filepath.Join(userDir, "workspaceStorage", name)
		Expect(os.MkdirAll(dir, 0755)).To(Succeed())
		mtime := time.Now().Add(-age)
		Expect(os.Chtimes(dir, mtime, mtime)).To(Succeed())
		return dir
	}

	touch := func(dir string, age time.Duration) {
		mtime := time.Now().Add(-age)
		Expect(os.Chtimes(dir, mtime, mtime)).To(Succeed())
	}

	BeforeEach(func() {
		userDir = tempDir()
		project = tempDir()
		scanner = NewWorkspaceScanner(userDir, ".feature")
		ctx = context.Background()
	})

	It("returns nothing when workspace storage is missing", func() {
		Expect(scanner.Entries()).To(BeEmpty())
		_, ok := scanner.Locate(ctx)
		Expect(ok).To(BeFalse())
	})

	It("orders entries by modification time, newest first", func() {
		workspace("old", 3*time.Hour)
		workspace("new", time.Minute)
		workspace("mid", time.Hour)
		writeFile(filepath.Join(userDir, "workspaceStorage", "stray.json"), []byte("{}"))
		touch(filepath.Join(userDir, "workspaceStorage", "old"), 3*time.Hour)

		var names []string
		for _, e := range scanner.Entries() {
			names = append(names, filepath.Base(e.Path))
		}
		Expect(names).To(Equal([]string{"new", "mid", "old"}))
	})

	It("finds an existing feature path referenced in a state file", func() {
		target := featureFile(project, "login.feature")
		ws := workspace("a1b2", time.Minute)
		writeFile(filepath.Join(ws, "workspace.json"), []byte(`{"folder":"file://`+project+`","active":"`+target+`"}`))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("skips candidates that no longer exist", func() {
		target := featureFile(project, "kept.feature")
		ws := workspace("a1b2", time.Minute)
		writeFile(filepath.Join(ws, "state.json"), []byte(`["/gone/deleted.feature","`+target+`"]`))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("unwraps URIs with percent escapes", func() {
		spaced := filepath.Join(project, "my app")
		target := featureFile(spaced, "checkout.feature")
		ws := workspace("a1b2", time.Minute)
		uri := "file://" + filepath.ToSlash(project) + "/my%20app/checkout.feature"
		writeFile(filepath.Join(ws, "storage.json"), []byte(`{"resource": "`+uri+`"}`))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("walks nested directories", func() {
		target := featureFile(project, "nested.feature")
		ws := workspace("a1b2", time.Minute)
		writeFile(filepath.Join(ws, "a", "b", "c", "deep.txt"), []byte(target))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("still finds a match next to a corrupt binary file", func() {
		target := featureFile(project, "valid.feature")
		ws := workspace("a1b2", time.Minute)
		writeFile(filepath.Join(ws, "0-corrupt.bin"), []byte{0xff, 0xfe, 0x00, 0x81, '/', 0xc3, 0x28})
		writeFile(filepath.Join(ws, "1-valid.json"), []byte(`"`+target+`"`))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("decodes paths surrounded by invalid UTF-8", func() {
		target := featureFile(project, "mixed.feature")
		ws := workspace("a1b2", time.Minute)
		raw := append([]byte{0xff, 0x00, '"'}, []byte(target)...)
		raw = append(raw, '"', 0xfe)
		writeFile(filepath.Join(ws, "state.bin"), raw)
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("skips unreadable files", func() {
		if os.Geteuid() == 0 {
			Skip("root can read files without permission")
		}
		target := featureFile(project, "readable.feature")
		ws := workspace("a1b2", time.Minute)
		locked := filepath.Join(ws, "0-locked.json")
		writeFile(locked, []byte(`"`+target+`"`))
		Expect(os.Chmod(locked, 0)).To(Succeed())
		writeFile(filepath.Join(ws, "1-open.json"), []byte(`"`+target+`"`))
		touch(ws, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("continues past newer workspaces without a match", func() {
		target := featureFile(project, "older.feature")
		older := workspace("older", 2*time.Hour)
		writeFile(filepath.Join(older, "state.json"), []byte(`"`+target+`"`))
		touch(older, 2*time.Hour)
		newer := workspace("newer", time.Minute)
		writeFile(filepath.Join(newer, "state.json"), []byte(`{"nothing":"here"}`))
		touch(newer, time.Minute)

		entries := scanner.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Path).To(Equal(newer))
		_, ok := scanner.ScanEntry(ctx, entries[0])
		Expect(ok).To(BeFalse())

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(target))
	})

	It("prefers the most recent workspace", func() {
		oldTarget := featureFile(project, "old.feature")
		newTarget := featureFile(project, "new.feature")
		older := workspace("older", 2*time.Hour)
		writeFile(filepath.Join(older, "state.json"), []byte(`"`+oldTarget+`"`))
		touch(older, 2*time.Hour)
		newer := workspace("newer", time.Minute)
		writeFile(filepath.Join(newer, "state.json"), []byte(`"`+newTarget+`"`))
		touch(newer, time.Minute)

		path, ok := scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(newTarget))
	})

	It("only scans the configured number of workspaces", func() {
		target := featureFile(project, "stale.feature")
		stale := workspace("stale", 5*time.Hour)
		writeFile(filepath.Join(stale, "state.json"), []byte(`"`+target+`"`))
		touch(stale, 5*time.Hour)
		fresh := workspace("fresh", time.Minute)
		writeFile(filepath.Join(fresh, "state.json"), []byte(`{}`))
		touch(fresh, time.Minute)

		scanner.Limit = 1
		_, ok := scanner.Locate(ctx)
		Expect(ok).To(BeFalse())

		scanner.Limit = DefaultScanLimit
		_, ok = scanner.Locate(ctx)
		Expect(ok).To(BeTrue())
	})

	It("stops when the context is cancelled", func() {
		target := featureFile(project, "late.feature")
		ws := workspace("a1b2", time.Minute)
		writeFile(filepath.Join(ws, "state.json"), []byte(`"`+target+`"`))
		touch(ws, time.Minute)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, ok := scanner.Locate(cancelled)
		Expect(ok).To(BeFalse())
	})

	Context("state databases", func() {
		createStateDB := func(path string, values ...string) {
			Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
			db, err := sql.Open("sqlite", path)
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()
			_, err = db.Exec("CREATE TABLE ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)")
			Expect(err).NotTo(HaveOccurred())
			for i, v := range values {
				_, err = db.Exec("INSERT INTO ItemTable (key, value) VALUES (?, ?)", "key"+string(rune('a'+i)), []byte(v))
				Expect(err).NotTo(HaveOccurred())
			}
		}

		It("reads every ItemTable value", func() {
			path := filepath.Join(tempDir(), "state.vscdb")
			createStateDB(path, `{"a":1}`, "second")
			values, err := readStateValues(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(ConsistOf([]byte(`{"a":1}`), []byte("second")))
		})

		It("finds paths stored in the database", func() {
			target := featureFile(project, "db.feature")
			ws := workspace("a1b2", time.Minute)
			createStateDB(filepath.Join(ws, "state.vscdb"),
				`{"memento/workbench.parts.editor":{"resource":"file://`+filepath.ToSlash(target)+`"}}`)
			touch(ws, time.Minute)

			path, ok := scanner.Locate(ctx)
			Expect(ok).To(BeTrue())
			Expect(path).To(Equal(target))
		})

		It("falls back to raw bytes for a file that is not a database", func() {
			target := featureFile(project, "raw.feature")
			ws := workspace("a1b2", time.Minute)
			writeFile(filepath.Join(ws, "state.vscdb"), []byte("not sqlite "+target))
			touch(ws, time.Minute)

			_, err := readStateValues(ctx, filepath.Join(ws, "state.vscdb"))
			Expect(err).To(HaveOccurred())

			path, ok := scanner.Locate(ctx)
			Expect(ok).To(BeTrue())
			Expect(path).To(Equal(target))
		})
	})
})
