package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Roles", func() {
	ginkgo.DescribeTable("HasPermission follows the hierarchy",
		func(user, required Role, expected bool) {
			gomega.Expect(HasPermission(user, required)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("admin acts as intern", RoleAdmin, RoleIntern, true),
		ginkgo.Entry("hr acts as project manager", RoleHR, RoleProjectManager, true),
		ginkgo.Entry("project manager acts as employee", RoleProjectManager, RoleEmployee, true),
		ginkgo.Entry("employee cannot act as hr", RoleEmployee, RoleHR, false),
		ginkgo.Entry("intern cannot act as employee", RoleIntern, RoleEmployee, false),
		ginkgo.Entry("unknown role has nothing", Role("contractor"), RoleIntern, false),
	)

	ginkgo.It("should use exact membership for plain allow-lists", func() {
		p := AnyOf(RoleAdmin, RoleHR)
		gomega.Expect(p.Permits(RoleHR)).To(gomega.BeTrue())
		gomega.Expect(p.Permits(RoleIntern)).To(gomega.BeFalse())

		pmOnly := AnyOf(RoleProjectManager)
		gomega.Expect(pmOnly.Permits(RoleAdmin)).To(gomega.BeFalse())
	})

	ginkgo.It("should walk the hierarchy when inheritance is requested", func() {
		p := AtLeast(RoleProjectManager)
		gomega.Expect(p.Permits(RoleAdmin)).To(gomega.BeTrue())
		gomega.Expect(p.Permits(RoleHR)).To(gomega.BeTrue())
		gomega.Expect(p.Permits(RoleProjectManager)).To(gomega.BeTrue())
		gomega.Expect(p.Permits(RoleEmployee)).To(gomega.BeFalse())
	})

	ginkgo.It("should parse roles case-insensitively", func() {
		r, ok := ParseRole(" Project_Manager ")
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(r).To(gomega.Equal(RoleProjectManager))

		_, ok = ParseRole("root")
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should know which roles need a profile and a location", func() {
		gomega.Expect(RoleIntern.RequiresProfile()).To(gomega.BeTrue())
		gomega.Expect(RoleHR.RequiresProfile()).To(gomega.BeFalse())
		gomega.Expect(RoleEmployee.RequiresLocation()).To(gomega.BeTrue())
		gomega.Expect(RoleProjectManager.RequiresLocation()).To(gomega.BeFalse())
	})
})
