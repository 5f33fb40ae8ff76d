package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// pngFixture returns a minimal valid PNG for exercising the image pipeline.
func pngFixture() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Together", func() {
	var (
		server    *ghttp.Server
		extractor *Together
		receipt   *Receipt
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		extractor, newErr = NewTogether(server.URL(), "test-key", "")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		receipt, err = extractor.ExtractReceipt(pngFixture(), "image/png")
	})

	When("the service returns a clean completion", func() {
		var captured chatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/v1/chat/completions"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer test-key"),
				func(w http.ResponseWriter, r *http.Request) {
					Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{
							"content": `{"items": [{"name": "Noodles", "price": 11.00}], "tax": 0.90, "tip": 2.00}`,
						}},
					},
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the extracted receipt", func() {
			Expect(receipt.Items).To(HaveLen(1))
			Expect(receipt.Items[0].Name).To(Equal("Noodles"))
			Expect(receipt.Tax).To(Equal(0.90))
			Expect(receipt.Tip).To(Equal(2.00))
		})

		It("should pin the generation parameters", func() {
			Expect(captured.Model).To(Equal("meta-llama/Llama-3.2-11B-Vision-Instruct-Turbo"))
			Expect(captured.Temperature).To(Equal(0.0))
			Expect(captured.TopP).To(Equal(0.1))
			Expect(captured.MaxTokens).To(Equal(500))
			Expect(captured.Stop).To(Equal([]string{"\n\n", "**", "```", "Analysis", "Receipt"}))
		})
	})

	When("the completion is wrapped in markdown", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"content": "```json\n{\"items\": [{\"name\": \"Taco\", \"price\": 3.00}], \"tax\": 0, \"tip\": 0}\n```",
					}},
				},
			}))
		})

		It("should normalize the response", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.Items[0].Name).To(Equal("Taco"))
		})
	})

	When("the service returns a non-success status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, "overloaded"))
		})

		It("returns an UpstreamError with the status and body", func() {
			var upstream *UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.Status).To(Equal(http.StatusServiceUnavailable))
			Expect(upstream.Body).To(Equal("overloaded"))
		})
	})

	When("the completion has no choices", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"choices": []map[string]any{},
			}))
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the completion contains no JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "sorry, unreadable image"}},
				},
			}))
		})

		It("returns ErrNoJSONFound", func() {
			Expect(err).To(MatchError(ErrNoJSONFound))
		})
	})
})

var _ = Describe("NewTogether", func() {
	When("the api key is missing", func() {
		It("returns an error", func() {
			_, err := NewTogether("", "", "")
			Expect(err).To(HaveOccurred())
		})
	})
})
