package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/talentlens/semmatch/pkg/textgen/openai"
)

func TestOpenAI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAI Generator Suite")
}

var _ = Describe("Generator", func() {
	var (
		server   *httptest.Server
		requests []map[string]any
		status   int
		reply    string
		ctx      context.Context
	)

	BeforeEach(func() {
		requests = nil
		status = http.StatusOK
		reply = "normalized description"
		ctx = context.Background()

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

			var body map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			requests = append(requests, body)

			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": reply}},
				},
			}
			Expect(json.NewEncoder(w).Encode(resp)).To(Succeed())
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newGenerator := func() *openai.Generator {
		g, err := openai.NewGenerator(openai.GeneratorConfig{
			BaseURL: server.URL + "/v1",
			APIKey:  "test-key",
			Model:   "test-model",
		})
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	It("returns the first choice's message", func() {
		g := newGenerator()
		out, err := g.Generate(ctx, "describe this role", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("normalized description"))
	})

	It("prepends the system prompt as a system message", func() {
		g := newGenerator()
		_, err := g.Generate(ctx, "user prompt", "system prompt")
		Expect(err).NotTo(HaveOccurred())

		Expect(requests).To(HaveLen(1))
		messages := requests[0]["messages"].([]any)
		Expect(messages).To(HaveLen(2))
		first := messages[0].(map[string]any)
		Expect(first["role"]).To(Equal("system"))
		Expect(first["content"]).To(Equal("system prompt"))
	})

	It("omits the system message when the system prompt is empty", func() {
		g := newGenerator()
		_, err := g.Generate(ctx, "user prompt", "  ")
		Expect(err).NotTo(HaveOccurred())

		messages := requests[0]["messages"].([]any)
		Expect(messages).To(HaveLen(1))
	})

	It("rejects an empty prompt without calling the API", func() {
		g := newGenerator()
		_, err := g.Generate(ctx, "   ", "")
		Expect(err).To(HaveOccurred())
		Expect(requests).To(BeEmpty())
	})

	It("surfaces non-200 responses", func() {
		status = http.StatusInternalServerError
		g := newGenerator()
		_, err := g.Generate(ctx, "prompt", "")
		Expect(err).To(HaveOccurred())
	})

	It("requires a base url and api key", func() {
		_, err := openai.NewGenerator(openai.GeneratorConfig{APIKey: "k"})
		Expect(err).To(HaveOccurred())
		_, err = openai.NewGenerator(openai.GeneratorConfig{BaseURL: "http://x"})
		Expect(err).To(HaveOccurred())
	})
})
