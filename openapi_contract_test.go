package main_test

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI Contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents the request lifecycle operations", func() {
		type op struct {
			method string
			path   string
		}
		for _, o := range []op{
			{http.MethodPost, "/requests"},
			{http.MethodGet, "/requests"},
			{http.MethodGet, "/requests/mine"},
			{http.MethodGet, "/requests/pending"},
			{http.MethodGet, "/requests/{id}"},
			{http.MethodPut, "/requests/{id}"},
			{http.MethodPatch, "/requests/{id}/approve"},
			{http.MethodPatch, "/requests/{id}/reject"},
		} {
			item := doc.Paths.Find(o.path)
			Expect(item).NotTo(BeNil(), "missing path %s", o.path)
			Expect(item.GetOperation(o.method)).NotTo(BeNil(), "missing %s %s", o.method, o.path)
		}
	})

	It("documents the administration surface", func() {
		for _, path := range []string{
			"/users", "/users/{id}", "/users/bulk-import",
			"/sectors", "/sectors/{id}", "/sectors/bulk-upload", "/sectors/{id}/users",
			"/permission-types", "/permission-types/{id}", "/permission-types/bulk-upload",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("marks approve and reject with a conflict response", func() {
		for _, path := range []string{"/requests/{id}/approve", "/requests/{id}/reject"} {
			op := doc.Paths.Find(path).GetOperation(http.MethodPatch)
			Expect(op.Responses.Status(http.StatusConflict)).NotTo(BeNil(), "missing 409 on %s", path)
		}
	})
})
