package auth

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		gen  *JWTTokenGenerator
		user *User
	)

	ginkgo.BeforeEach(func() {
		gen = NewJWTTokenGenerator("access-secret-0123456789", "refresh-secret-0123456789", 0, 0)
		user = &User{ID: 7, Email: "pm@example.com", Role: RoleProjectManager}
	})

	ginkgo.It("should default to 24h access and 7d refresh lifetimes", func() {
		gomega.Expect(gen.AccessTokenTTL).To(gomega.Equal(24 * time.Hour))
		gomega.Expect(gen.RefreshTokenTTL).To(gomega.Equal(7 * 24 * time.Hour))
	})

	ginkgo.It("should round-trip access claims", func() {
		token, err := gen.IssueAccessToken(user, "marker")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := gen.Verify(token, AccessToken)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal(int64(7)))
		gomega.Expect(claims.Role).To(gomega.Equal(RoleProjectManager))
		gomega.Expect(claims.SessionToken).To(gomega.Equal("marker"))
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))
	})

	ginkgo.It("should never validate a token against the other secret", func() {
		access, err := gen.IssueAccessToken(user, "")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		refresh, err := gen.IssueRefreshToken(user)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(access, RefreshToken)
		gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		_, err = gen.Verify(refresh, AccessToken)
		gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
	})

	ginkgo.It("should reject a refresh-typed token even when secrets match", func() {
		same := NewJWTTokenGenerator("same-secret-0123456789", "same-secret-0123456789", 0, 0)
		refresh, err := same.IssueRefreshToken(user)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = same.Verify(refresh, AccessToken)
		gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
	})

	ginkgo.It("should report expiry distinctly", func() {
		past := time.Now().Add(-48 * time.Hour)
		token, err := gen.WithClock(func() time.Time { return past }).IssueAccessToken(user, "")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.WithClock(time.Now).Verify(token, AccessToken)
		gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
	})

	ginkgo.It("should reject unsigned and foreign-algorithm tokens", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID:    7,
			TokenType: AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(raw, AccessToken)
		gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
	})

	ginkgo.It("should be total over arbitrary strings", func() {
		inputs := []string{"", ".", "..", "a.b.c", strings.Repeat("x", 4096), "eyJhbGciOiJIUzI1NiJ9.e30."}
		for _, in := range inputs {
			gomega.Expect(func() { _, _ = gen.Verify(in, AccessToken) }).ToNot(gomega.Panic())
			_, err := gen.Verify(in, AccessToken)
			gomega.Expect(err).To(gomega.HaveOccurred())
		}
	})
})
