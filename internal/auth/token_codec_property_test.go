package auth

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	return parameters
}

func emailGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.Identifier(),
		gen.OneConstOf("com", "ch", "fr", "es"),
	).Map(func(values []interface{}) string {
		return values[0].(string) + "@" + values[1].(string) + "." + values[2].(string)
	})
}

// TestSignVerifyRoundTripProperty checks that every signed identity verifies and keeps its email.
func TestSignVerifyRoundTripProperty(t *testing.T) {
	clock := &testClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	properties := gopter.NewProperties(propertyParameters())
	properties.Property("verify(sign(identity)) yields the same email", prop.ForAll(
		func(email, firstName string, age float64) bool {
			token, err := codec.Sign(GuestIdentity{Email: email, FirstName: firstName, Age: &age})
			if err != nil {
				t.Logf("sign failed: %v", err)
				return false
			}
			result := codec.Verify(token)
			return result.OK() && result.Claims.Email == email && *result.Claims.Age == age
		},
		emailGen(),
		gen.AlphaString(),
		gen.Float64Range(0, 120),
	))

	properties.TestingRun(t)
}

// TestNonPositiveTTLProperty checks that tokens with an empty validity window never verify.
func TestNonPositiveTTLProperty(t *testing.T) {
	clock := &testClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	properties := gopter.NewProperties(propertyParameters())
	properties.Property("ttl <= 0 never verifies", prop.ForAll(
		func(email string, minutes int) bool {
			token, err := codec.SignWithTTL(GuestIdentity{Email: email}, time.Duration(minutes)*time.Minute)
			if err != nil {
				return false
			}
			result := codec.Verify(token)
			return !result.OK() && result.Reason != ""
		},
		emailGen(),
		gen.IntRange(-525600, 0),
	))

	properties.Property("tokens past their expiry never verify", prop.ForAll(
		func(email string, minutes int) bool {
			local := &testClock{current: clock.current}
			c := newTestCodec(t, local)
			token, err := c.SignWithTTL(GuestIdentity{Email: email}, time.Duration(minutes)*time.Minute)
			if err != nil {
				return false
			}
			local.Advance(time.Duration(minutes)*time.Minute + 2*time.Minute)
			return !c.Verify(token).OK()
		},
		emailGen(),
		gen.IntRange(1, 525600),
	))

	properties.TestingRun(t)
}

// TestForeignSecretProperty checks that tokens signed with another secret are always rejected.
func TestForeignSecretProperty(t *testing.T) {
	clock := &testClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	properties := gopter.NewProperties(propertyParameters())
	properties.Property("different secrets never verify", prop.ForAll(
		func(email, secret string) bool {
			foreign := newTestCodec(t, clock, func(c *TokenConfig) { c.Secret = "x" + secret })
			token, err := foreign.Sign(GuestIdentity{Email: email})
			if err != nil {
				return false
			}
			return codec.Verify(token).Reason == ReasonSignature
		},
		emailGen(),
		gen.AlphaString().SuchThat(func(s string) bool { return "x"+s != "wedding-secret" }),
	))

	properties.TestingRun(t)
}
