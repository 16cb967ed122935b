package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: New(EmptyInput, "empty"), want: EmptyInput},
		{name: "wrapped", err: fmt.Errorf("send: %w", API(401, "bad key")), want: APIError},
		{name: "unclassified", err: errors.New("boom"), want: NetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(NetworkError, "send request", errors.New("dial tcp")))
	if !errors.Is(err, &Error{Kind: NetworkError}) {
		t.Fatalf("expected errors.Is to match NetworkError")
	}
	if errors.Is(err, &Error{Kind: APIError}) {
		t.Fatalf("did not expect APIError match")
	}
}

func TestErrorString(t *testing.T) {
	got := API(429, "rate limited").Error()
	if got != "api_error (status 429): rate limited" {
		t.Fatalf("unexpected error string: %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("a\nb\r\nc", 10); got != "a b c" {
		t.Fatalf("Excerpt() = %q", got)
	}

	long := strings.Repeat("я", 20)
	got := Excerpt(long, 5)
	if got != strings.Repeat("я", 5)+"..." {
		t.Fatalf("Excerpt() = %q", got)
	}
}

func TestMalformedBoundsExcerpt(t *testing.T) {
	fe := Malformed("missing markers", strings.Repeat("x", ExcerptLimit*2))
	if fe.Kind != MalformedResponse {
		t.Fatalf("unexpected kind: %s", fe.Kind)
	}
	if len(fe.Excerpt) != ExcerptLimit+3 {
		t.Fatalf("excerpt not bounded: %d", len(fe.Excerpt))
	}
}

func TestMessageKeys(t *testing.T) {
	for _, k := range []Kind{EmptyInput, MissingAPIKey, NetworkError, APIError, MalformedResponse, Clipboard} {
		if k.MessageKey() == "notify_error" {
			t.Fatalf("kind %s has no dedicated message", k)
		}
	}
}
