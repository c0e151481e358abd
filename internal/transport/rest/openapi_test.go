package rest_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "REST Transport Suite")
}

var _ = ginkgo.Describe("OpenAPI document", func() {
	var doc *openapi3.T

	ginkgo.BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("should be a valid document", func() {
		gomega.Expect(doc.Validate(context.Background())).To(gomega.Succeed())
	})

	ginkgo.It("should describe the core endpoints", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/refresh",
			"/auth/accept-invitation",
			"/onboarding/company",
			"/assessments/available",
			"/assessments/{id}/submit",
			"/performance/scores",
			"/admin/dashboard",
		} {
			gomega.Expect(doc.Paths.Find(path)).ToNot(gomega.BeNil(), path)
		}
	})

	ginkgo.It("should secure the admin surface with bearer auth", func() {
		item := doc.Paths.Find("/admin/dashboard")
		gomega.Expect(item).ToNot(gomega.BeNil())
		gomega.Expect(item.Get.Security).ToNot(gomega.BeNil())
	})
})
