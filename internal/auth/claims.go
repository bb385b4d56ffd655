package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// numericDate is an RFC 7519 NumericDate kept at nanosecond precision. The
// decimal text is parsed directly so the fraction never passes through float64.
type numericDate time.Time

func (d numericDate) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	sec, nsec := t.Unix(), t.Nanosecond()
	if nsec == 0 {
		return []byte(strconv.FormatInt(sec, 10)), nil
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", nsec), "0")
	return []byte(strconv.FormatInt(sec, 10) + "." + frac), nil
}

func (d *numericDate) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return errors.New("numeric date must be a JSON number")
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("numeric date: %w", err)
	}

	whole, frac, _ := strings.Cut(n.String(), ".")
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return fmt.Errorf("numeric date %s: %w", n, err)
	}
	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		if nsec, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return fmt.Errorf("numeric date %s: %w", n, err)
		}
		if strings.HasPrefix(whole, "-") {
			nsec = -nsec
		}
	}
	*d = numericDate(time.Unix(sec, nsec))
	return nil
}

// tokenClaims is the whole payload: subject, issue time and expiry.
type tokenClaims struct {
	Subject   string       `json:"sub,omitempty"`
	IssuedAt  *numericDate `json:"iat,omitempty"`
	ExpiresAt *numericDate `json:"exp,omitempty"`
}

func (c *tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.ExpiresAt.numeric(), nil
}

func (c *tokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return c.IssuedAt.numeric(), nil
}

func (c *tokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c *tokenClaims) GetIssuer() (string, error) { return "", nil }

func (c *tokenClaims) GetSubject() (string, error) { return c.Subject, nil }

func (c *tokenClaims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// numeric converts without jwt.NewNumericDate, which would truncate to jwt.TimePrecision.
func (d *numericDate) numeric() *jwt.NumericDate {
	if d == nil {
		return nil
	}
	return &jwt.NumericDate{Time: time.Time(*d)}
}
