package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type CodecSuite struct {
	suite.Suite
	codec *Codec
}

func (s *CodecSuite) SetupTest() {
	s.codec = NewCodec("codec-test-secret")
}

func TestCodecSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) TestSignAndVerifyRoundTrip() {
	signed, err := s.codec.Sign(Claims{Role: "admin"}, "issuer", "audience", time.Now().Add(time.Minute))
	Expect(err).To(BeNil())

	claims, err := s.codec.Verify(signed, VerifyOptions{Issuer: "issuer", Audience: "audience"})

	Expect(err).To(BeNil())
	Expect(claims.Role).To(Equal("admin"))
	Expect(claims.ID).ToNot(BeEmpty())
}

func (s *CodecSuite) TestEveryIssuanceGetsAFreshTokenID() {
	first, _ := s.codec.Sign(Claims{}, "issuer", "audience", time.Now().Add(time.Minute))
	second, _ := s.codec.Sign(Claims{}, "issuer", "audience", time.Now().Add(time.Minute))

	firstClaims, _ := s.codec.Verify(first, VerifyOptions{})
	secondClaims, _ := s.codec.Verify(second, VerifyOptions{})

	Expect(firstClaims.ID).ToNot(Equal(secondClaims.ID))
}

func (s *CodecSuite) TestVerifyRejectsWrongSecret() {
	other := NewCodec("another-secret")
	signed, _ := other.Sign(Claims{}, "issuer", "audience", time.Now().Add(time.Minute))

	_, err := s.codec.Verify(signed, VerifyOptions{})

	Expect(errors.Is(err, ErrInvalidSignature)).To(BeTrue())
}

func (s *CodecSuite) TestVerifyRejectsExpiredToken() {
	signed, _ := s.codec.Sign(Claims{}, "issuer", "audience", time.Now().Add(-time.Minute))

	_, err := s.codec.Verify(signed, VerifyOptions{})

	Expect(errors.Is(err, ErrExpired)).To(BeTrue())
}

func (s *CodecSuite) TestVerifyRejectsGarbage() {
	_, err := s.codec.Verify("not-a-token", VerifyOptions{})

	Expect(errors.Is(err, ErrMalformed)).To(BeTrue())
}

func (s *CodecSuite) TestVerifyRejectsUnexpectedAlgorithm() {
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := hs512.SignedString([]byte("codec-test-secret"))
	Expect(err).To(BeNil())

	_, err = s.codec.Verify(signed, VerifyOptions{})

	Expect(errors.Is(err, ErrWrongAlgorithm)).To(BeTrue())
}

func (s *CodecSuite) TestVerifyEnforcesIssuerAndAudienceWhenRequested() {
	signed, _ := s.codec.Sign(Claims{}, "issuer", "audience", time.Now().Add(time.Minute))

	_, err := s.codec.Verify(signed, VerifyOptions{Issuer: "someone-else"})
	Expect(errors.Is(err, ErrWrongIssuerOrAudience)).To(BeTrue())

	_, err = s.codec.Verify(signed, VerifyOptions{Audience: "someone-else"})
	Expect(errors.Is(err, ErrWrongIssuerOrAudience)).To(BeTrue())

	_, err = s.codec.Verify(signed, VerifyOptions{})
	Expect(err).To(BeNil())
}
