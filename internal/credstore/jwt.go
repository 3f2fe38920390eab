package credstore

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// iatSkewAllowance tolerates modest clock drift between the issuing server
// and this device when checking the issued-at claim
const iatSkewAllowance = 300 * time.Second

// jwtHeader is the decoded view of the first token segment
type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// jwtClaims is the decoded view of the second token segment. All fields are
// optional; absent claims never block validation.
type jwtClaims struct {
	Exp *int64  `json:"exp"`
	Nbf *int64  `json:"nbf"`
	Iat *int64  `json:"iat"`
	Iss *string `json:"iss"`
}

// Validator performs local-only structural JWT validation: shape and claim
// checks without signature verification or a remote trust anchor.
type Validator struct {
	expectedIssuer string
	now            func() time.Time
}

// NewValidator creates a validator that requires iss (when present) to
// equal expectedIssuer
func NewValidator(expectedIssuer string) *Validator {
	return &Validator{
		expectedIssuer: expectedIssuer,
		now:            time.Now,
	}
}

// IsStructurallyValid checks the token's three-segment shape, header
// fields, and any time/issuer claims that are present. Malformed base64 or
// JSON at any step invalidates the token rather than returning an error.
func (v *Validator) IsStructurallyValid(token string) bool {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return false
	}

	var header jwtHeader
	if !decodeSegment(segments[0], &header) {
		return false
	}
	if header.Alg != "HS256" || header.Typ != "JWT" {
		return false
	}

	var claims jwtClaims
	if !decodeSegment(segments[1], &claims) {
		return false
	}

	now := v.now()
	if claims.Exp != nil && !time.Unix(*claims.Exp, 0).After(now) {
		return false
	}
	if claims.Nbf != nil && time.Unix(*claims.Nbf, 0).After(now) {
		return false
	}
	if claims.Iat != nil && time.Unix(*claims.Iat, 0).After(now.Add(iatSkewAllowance)) {
		return false
	}
	if claims.Iss != nil && *claims.Iss != v.expectedIssuer {
		return false
	}

	return true
}

func decodeSegment(segment string, out interface{}) bool {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		// Some issuers pad their segments
		raw, err = base64.URLEncoding.DecodeString(segment)
		if err != nil {
			return false
		}
	}
	return json.Unmarshal(raw, out) == nil
}
