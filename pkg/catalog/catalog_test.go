package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

var _ = Describe("Catalog", func() {
	Describe("New", func() {
		It("drops items with no descriptive text", func() {
			cat := catalog.New("occupations", []catalog.Item{
				{ID: "1", Title: "Data Engineer", Text: "Builds data pipelines"},
				{ID: "2", Title: "Empty", Text: "   "},
			})
			Expect(cat.Len()).To(Equal(1))
		})

		It("assigns positional IDs to items missing one", func() {
			cat := catalog.New("courses", []catalog.Item{
				{Title: "Go Basics", Text: "An introductory Go course"},
			})
			item, ok := cat.At(0)
			Expect(ok).To(BeTrue())
			Expect(item.ID).To(Equal("courses-0"))
		})

		It("preserves source order", func() {
			cat := catalog.New("c", []catalog.Item{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second"},
			})
			first, _ := cat.At(0)
			second, _ := cat.At(1)
			Expect(first.ID).To(Equal("a"))
			Expect(second.ID).To(Equal("b"))
		})
	})

	Describe("At", func() {
		It("reports out-of-range positions", func() {
			cat := catalog.New("c", nil)
			_, ok := cat.At(0)
			Expect(ok).To(BeFalse())
			_, ok = cat.At(-1)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("metadata accessors", func() {
		item := catalog.Item{
			ID:   "course-1",
			Text: "x",
			Metadata: map[string]any{
				"url":      "https://example.com/course",
				"duration": float64(12),
				"level":    42,
			},
		}

		It("returns string fields with defaults", func() {
			Expect(item.StringField("url", "")).To(Equal("https://example.com/course"))
			Expect(item.StringField("missing", "n/a")).To(Equal("n/a"))
			Expect(item.StringField("duration", "n/a")).To(Equal("n/a"))
		})

		It("returns int fields with defaults", func() {
			Expect(item.IntField("duration", 0)).To(Equal(12))
			Expect(item.IntField("level", 0)).To(Equal(42))
			Expect(item.IntField("missing", 7)).To(Equal(7))
			Expect(item.IntField("url", 7)).To(Equal(7))
		})
	})
})

var _ = Describe("LoadJSONFile", func() {
	var (
		logger *zap.Logger
		dir    string
	)

	BeforeEach(func() {
		logger = zap.NewNop()
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	It("loads records and keeps extra fields as metadata", func() {
		path := writeFile("courses.json", `[
			{"id": "c1", "title": "SQL Fundamentals", "description": "Learn SQL", "url": "https://x/sql", "duration": 8},
			{"id": "c2", "title": "Go Concurrency", "description": "Goroutines and channels"}
		]`)

		cat, err := catalog.LoadJSONFile("courses", path, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(cat.Len()).To(Equal(2))

		item, _ := cat.At(0)
		Expect(item.ID).To(Equal("c1"))
		Expect(item.Title).To(Equal("SQL Fundamentals"))
		Expect(item.Text).To(Equal("SQL Fundamentals. Learn SQL"))
		Expect(item.StringField("url", "")).To(Equal("https://x/sql"))
		Expect(item.IntField("duration", 0)).To(Equal(8))
	})

	It("prefers an explicit text field over title+description", func() {
		path := writeFile("cat.json", `[
			{"id": "1", "title": "T", "description": "D", "text": "embed me"}
		]`)

		cat, err := catalog.LoadJSONFile("c", path, logger)
		Expect(err).NotTo(HaveOccurred())
		item, _ := cat.At(0)
		Expect(item.Text).To(Equal("embed me"))
	})

	It("accepts numeric IDs", func() {
		path := writeFile("cat.json", `[{"id": 101, "title": "T", "description": "D"}]`)

		cat, err := catalog.LoadJSONFile("c", path, logger)
		Expect(err).NotTo(HaveOccurred())
		item, _ := cat.At(0)
		Expect(item.ID).To(Equal("101"))
	})

	It("fails on a missing file", func() {
		_, err := catalog.LoadJSONFile("c", filepath.Join(dir, "absent.json"), logger)
		Expect(err).To(HaveOccurred())
	})

	It("fails on malformed JSON", func() {
		path := writeFile("bad.json", `{"not": "an array"}`)
		_, err := catalog.LoadJSONFile("c", path, logger)
		Expect(err).To(HaveOccurred())
	})

	It("yields a valid empty catalog for an empty array", func() {
		path := writeFile("empty.json", `[]`)
		cat, err := catalog.LoadJSONFile("c", path, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(cat.Len()).To(Equal(0))
	})
})
