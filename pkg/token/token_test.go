package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(Config{
		Secret:   "test-secret",
		Issuer:   "tasklight",
		Audience: "tasklight-web",
		TTL:      30 * time.Minute,
	})
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestService(t)

	assertion, err := svc.Issue("alice", "a@x.com", 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := svc.Validate(assertion)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if id.UserID != 42 {
		t.Errorf("UserID = %d, want 42", id.UserID)
	}
	if id.UserName != "alice" {
		t.Errorf("UserName = %q, want %q", id.UserName, "alice")
	}
	if id.Mail != "a@x.com" {
		t.Errorf("Mail = %q, want %q", id.Mail, "a@x.com")
	}
	if id.Role != "User" {
		t.Errorf("Role = %q, want %q", id.Role, "User")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestService(t)

	assertion, err := svc.Issue("alice", "a@x.com", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Move the service clock past the 30 minute expiry.
	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	if _, err := svc.Validate(assertion); err != ErrInvalidToken {
		t.Fatalf("Validate of expired assertion = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	svc := newTestService(t)
	good, err := svc.Issue("alice", "a@x.com", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	otherSecret := New(Config{Secret: "other", Issuer: "tasklight", Audience: "tasklight-web"})
	foreign, err := otherSecret.Issue("alice", "a@x.com", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	otherIssuer := New(Config{Secret: "test-secret", Issuer: "someone-else", Audience: "tasklight-web"})
	wrongIssuer, err := otherIssuer.Issue("alice", "a@x.com", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	otherAudience := New(Config{Secret: "test-secret", Issuer: "tasklight", Audience: "not-us"})
	wrongAudience, err := otherAudience.Issue("alice", "a@x.com", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name      string
		assertion string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIssuer},
		{"wrong audience", wrongAudience},
		{"truncated", good[:len(good)-5]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Validate(tc.assertion); err != ErrInvalidToken {
				t.Fatalf("Validate = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateRejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newTestService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice",
		"uid": "1",
		"iss": "tasklight",
		"aud": "tasklight-web",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assertion, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(assertion); err != ErrInvalidToken {
		t.Fatalf("Validate of alg=none assertion = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsNonNumericUID(t *testing.T) {
	svc := newTestService(t)

	cases := []string{"", "abc", "12x"}
	for _, uid := range cases {
		t.Run("uid="+uid, func(t *testing.T) {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "alice",
				"uid": uid,
				"iss": "tasklight",
				"aud": "tasklight-web",
				"exp": time.Now().Add(time.Hour).Unix(),
			})
			assertion, err := tok.SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := svc.Validate(assertion); err != ErrInvalidToken {
				t.Fatalf("Validate = %v, want ErrInvalidToken", err)
			}
		})
	}
}
