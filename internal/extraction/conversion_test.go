package extraction

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("prepareImageData", func() {
	When("the data is already PNG", func() {
		It("returns it unchanged", func() {
			data := pngFixture()
			out, err := prepareImageData(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(data))
		})
	})

	When("the data is JPEG", func() {
		It("re-encodes it as PNG", func() {
			var buf bytes.Buffer
			img := image.NewRGBA(image.Rect(0, 0, 2, 2))
			Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())

			out, err := prepareImageData(buf.Bytes(), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())

			_, decodeErr := png.Decode(bytes.NewReader(out))
			Expect(decodeErr).NotTo(HaveOccurred())
		})
	})

	When("the data is not a decodable image", func() {
		It("returns an error", func() {
			_, err := prepareImageData([]byte("not an image"), "image/jpeg")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("isHEICData", func() {
	It("detects the heic brand in the ftyp box", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		data = append(data, make([]byte, 8)...)
		Expect(isHEICData(data)).To(BeTrue())
	})

	It("rejects non-HEIC data", func() {
		Expect(isHEICData(pngFixture())).To(BeFalse())
		Expect(isHEICData([]byte("short"))).To(BeFalse())
	})
})
