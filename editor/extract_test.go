package editor

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Patterns", func() {
	Context("state patterns", func() {
		patterns := StatePatterns(".feature")

		It("extracts windows, posix and URI paths in pattern order", func() {
			text := `C:\proj\win.feature` + "\n/srv/posix.feature\n" + `"file:///srv/uri.feature"`
			Expect(patterns.All(text)).To(Equal([]string{
				`C:\proj\win.feature`,
				"/srv/posix.feature",
				"///srv/uri.feature",
				"file:///srv/uri.feature",
			}))
		})

		It("does not read a URI scheme as a drive letter", func() {
			Expect(patterns[0].FindAllString(`"file:///srv/uri.feature"`, -1)).To(BeEmpty())
		})

		It("stops at quotes, angle brackets, pipes and wildcards", func() {
			Expect(patterns.All(`<"/a/b.feature">`)).To(Equal([]string{"/a/b.feature"}))
			Expect(patterns.All(`/x|/a/b.feature`)).To(Equal([]string{"/a/b.feature"}))
			Expect(patterns.All(`/a/*.feature`)).To(BeEmpty())
		})

		It("does not glue a path onto preceding binary data", func() {
			Expect(patterns.All("/junk\x00\x01/srv/a.feature")).To(Equal([]string{"/srv/a.feature"}))
		})

		It("ignores other extensions", func() {
			Expect(patterns.All(`"/srv/a.feature.bak" "/srv/notes.txt"`)).To(Equal([]string{"/srv/a.feature"}))
		})

		It("deduplicates repeated references", func() {
			Expect(patterns.All(`"/srv/a.feature" "/srv/a.feature"`)).To(HaveLen(1))
		})
	})

	Context("FirstExisting", func() {
		It("falls through to the next pattern when a match does not exist", func() {
			dir := tempDir()
			existing := featureFile(dir, "real.feature")
			out := existing + "\nfile:///nowhere/ghost.feature\n"
			path, ok := StatusPatterns(".feature").FirstExisting(out)
			Expect(ok).To(BeTrue())
			Expect(path).To(Equal(existing))
		})

		It("only considers the first match of each pattern", func() {
			dir := tempDir()
			existing := featureFile(dir, "real.feature")
			out := "file:///nowhere/ghost.feature\n" + existing + "\n"
			_, ok := StatusPatterns(".feature").FirstExisting(out)
			Expect(ok).To(BeFalse())
		})

		It("returns false when nothing exists", func() {
			_, ok := StatusPatterns(".feature").FirstExisting("/nowhere/ghost.feature")
			Expect(ok).To(BeFalse())
		})
	})

	It("quotes the extension", func() {
		Expect(StatePatterns(".feature").All("/srv/axfeature")).To(BeEmpty())
	})
})

var _ = Describe("decode", func() {
	It("returns valid UTF-8 unchanged", func() {
		Expect(decode([]byte("/srv/é.feature"))).To(Equal([]string{"/srv/é.feature"}))
	})

	It("never fails on invalid bytes", func() {
		views := decode([]byte{'/', 'a', 0xff, 0xfe, '/', 'b'})
		Expect(views).To(HaveLen(2))
		Expect(views[0]).To(Equal("/a/b"))
		Expect(views[1]).To(Equal("/a\u00ff\u00fe/b"))
	})
})
