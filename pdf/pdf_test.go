package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/zoobzio/stowaway"
	stowawaytest "github.com/zoobzio/stowaway/testing"
)

func envelope(t *testing.T, password string, opts ...stowaway.EnvelopeOption) stowaway.Envelope {
	t.Helper()
	env, err := stowaway.NewEnvelope(password, opts...)
	if err != nil {
		t.Fatalf("NewEnvelope() error: %v", err)
	}
	return env
}

func TestCarrier_Defaults(t *testing.T) {
	c := New()
	if c.Kind() != stowaway.KindPDF {
		t.Errorf("Kind() = %s", c.Kind())
	}
	if got := c.Strategies(); !reflect.DeepEqual(got, []string{"primary", "alternate", "simple"}) {
		t.Errorf("Strategies() = %v", got)
	}

	bits, err := c.Capacity(stowawaytest.TestPDF(t, nil), envelope(t, ""))
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	if bits != stowaway.MetadataCapacity {
		t.Errorf("Capacity() = %d, want %d", bits, stowaway.MetadataCapacity)
	}
}

func TestCarrier_Options(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		want     []string
		capacity int
	}{
		{"reordered", []Option{WithStrategies(stowaway.StrategySimple, stowaway.StrategyPrimary)}, []string{"simple", "primary"}, stowaway.MetadataCapacity},
		{"unknown names fall back", []Option{WithStrategies("bogus")}, []string{"primary", "alternate", "simple"}, stowaway.MetadataCapacity},
		{"unknown names skipped", []Option{WithStrategies("bogus", stowaway.StrategySimple)}, []string{"simple"}, stowaway.MetadataCapacity},
		{"capacity", []Option{WithCapacity(800)}, []string{"primary", "alternate", "simple"}, 800},
		{"non-positive capacity ignored", []Option{WithCapacity(0)}, []string{"primary", "alternate", "simple"}, stowaway.MetadataCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.opts...)
			if got := c.Strategies(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strategies() = %v, want %v", got, tt.want)
			}
			if c.capacity != tt.capacity {
				t.Errorf("capacity = %d, want %d", c.capacity, tt.capacity)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := stowaway.DefaultConfig().PDF
	cfg.Strategies = []stowaway.StrategyName{stowaway.StrategyAlternate}
	cfg.Capacity = 4096

	c := FromConfig(cfg)
	if got := c.Strategies(); !reflect.DeepEqual(got, []string{"alternate"}) {
		t.Errorf("Strategies() = %v", got)
	}
	if c.capacity != 4096 {
		t.Errorf("capacity = %d", c.capacity)
	}
}

func TestCarrier_RoundTrip(t *testing.T) {
	base := stowawaytest.TestPDF(t, map[string]string{"Title": "Quarterly Report", "CreationDate": "D:20240101000000Z"})
	fixtures := map[string][]byte{
		"no info":          stowawaytest.TestPDF(t, nil),
		"with info":        base,
		"broken startxref": stowawaytest.BreakStartXref(base),
		"no trailer":       stowawaytest.StripTrailer(base),
	}
	passwords := []string{"", "test123"}
	messages := []string{"Hello, World!", ""}

	ctx := context.Background()
	for name, doc := range fixtures {
		for _, password := range passwords {
			for _, msg := range messages {
				t.Run(fmt.Sprintf("%s/%s/%q", name, password, msg), func(t *testing.T) {
					c := New()
					env := envelope(t, password)
					original := bytes.Clone(doc)

					out, err := c.Hide(ctx, doc, []byte(msg), env)
					if err != nil {
						t.Fatalf("Hide() error: %v", err)
					}
					if !bytes.Equal(doc, original) {
						t.Fatal("Hide() modified its input")
					}
					if !bytes.HasPrefix(out, doc) {
						t.Error("Hide() should append an update, not rewrite")
					}

					got, err := c.Extract(ctx, out, env)
					if err != nil {
						t.Fatalf("Extract() error: %v", err)
					}
					if string(got) != msg {
						t.Errorf("Extract() = %q, want %q", got, msg)
					}
				})
			}
		}
	}
}

func TestCarrier_PayloadLooksLikeObjectHeader(t *testing.T) {
	ctx := context.Background()
	env := envelope(t, "")
	doc := stowawaytest.TestPDF(t, map[string]string{"Title": "Minutes"})

	out, err := New().Hide(ctx, doc, []byte("the 5 0 obj marker"), env)
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	got, err := New().Extract(ctx, out, env)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if string(got) != "the 5 0 obj marker" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestCarrier_RoundTripCiphers(t *testing.T) {
	ctx := context.Background()
	doc := stowawaytest.TestPDF(t, nil)

	for _, algo := range []stowaway.CipherAlgo{stowaway.CipherFernet, stowaway.CipherAESGCM, stowaway.CipherXChaCha20, stowaway.CipherAge} {
		t.Run(string(algo), func(t *testing.T) {
			env := envelope(t, "test123", stowaway.WithCipher(algo), stowaway.WithAgeWorkFactor(10))
			out, err := New().Hide(ctx, doc, []byte("cipher payload"), env)
			if err != nil {
				t.Fatalf("Hide() error: %v", err)
			}
			got, err := New().Extract(ctx, out, env)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if string(got) != "cipher payload" {
				t.Errorf("Extract() = %q", got)
			}
		})
	}
}

func TestCarrier_NonASCII(t *testing.T) {
	ctx := context.Background()
	env := envelope(t, "")
	msg := "héllo wörld ✓ (parens) \\ backslash"

	out, err := New().Hide(ctx, stowawaytest.TestPDF(t, nil), []byte(msg), env)
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	got, err := New().Extract(ctx, out, env)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if string(got) != msg {
		t.Errorf("Extract() = %q, want %q", got, msg)
	}
}

func TestCarrier_RepeatedHide(t *testing.T) {
	ctx := context.Background()
	env := envelope(t, "")
	c := New()

	first, err := c.Hide(ctx, stowawaytest.TestPDF(t, nil), []byte("first"), env)
	if err != nil {
		t.Fatalf("Hide(first) error: %v", err)
	}
	second, err := c.Hide(ctx, first, []byte("second"), env)
	if err != nil {
		t.Fatalf("Hide(second) error: %v", err)
	}

	got, err := c.Extract(ctx, second, env)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Extract() = %q, want latest update", got)
	}
}

func TestCarrier_CapacityBoundary(t *testing.T) {
	ctx := context.Background()
	env := envelope(t, "")
	c := New(WithCapacity(160))
	doc := stowawaytest.TestPDF(t, nil)

	if _, err := c.Hide(ctx, doc, []byte(strings.Repeat("x", 20)), env); err != nil {
		t.Fatalf("Hide(20 bytes) error: %v", err)
	}

	_, err := c.Hide(ctx, doc, []byte(strings.Repeat("x", 21)), env)
	var ce *stowaway.CapacityError
	if !errors.As(err, &ce) || ce.Need != 168 || ce.Have != 160 {
		t.Errorf("Hide(21 bytes) error = %v", err)
	}
	if errors.Is(err, stowaway.ErrHidingFailed) {
		t.Error("capacity errors must not reach the strategy chain")
	}
}

func TestCarrier_NoMetadata(t *testing.T) {
	_, err := New().Extract(context.Background(), stowawaytest.TestPDF(t, nil), envelope(t, ""))

	if !errors.Is(err, stowaway.ErrNoMetadata) {
		t.Errorf("Extract() error = %v, want ErrNoMetadata", err)
	}
	if !errors.Is(err, stowaway.ErrExtractionFailed) {
		t.Errorf("Extract() error = %v, want ErrExtractionFailed", err)
	}
	if errors.Is(err, stowaway.ErrNoHiddenData) {
		t.Error("missing metadata must be distinct from missing hidden data")
	}
}

func TestCarrier_NoHiddenData(t *testing.T) {
	doc := stowawaytest.TestPDF(t, map[string]string{"Title": "Report", "Producer": "Document generator v1.0"})

	_, err := New().Extract(context.Background(), doc, envelope(t, ""))
	if !errors.Is(err, stowaway.ErrNoHiddenData) {
		t.Errorf("Extract() error = %v, want ErrNoHiddenData", err)
	}
	if errors.Is(err, stowaway.ErrNoMetadata) {
		t.Error("present metadata must not report ErrNoMetadata")
	}

	var chain *stowaway.ChainError
	if !errors.As(err, &chain) || len(chain.Attempts) != 3 {
		t.Errorf("Extract() error = %v, want a chain of 3 attempts", err)
	}
}

func TestCarrier_WrongPassword(t *testing.T) {
	ctx := context.Background()
	out, err := New().Hide(ctx, stowawaytest.TestPDF(t, nil), []byte("secret"), envelope(t, "right"))
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}

	_, err = New().Extract(ctx, out, envelope(t, "wrong"))
	if !errors.Is(err, stowaway.ErrDecryptionFailed) {
		t.Errorf("Extract() error = %v, want ErrDecryptionFailed", err)
	}
	var chain *stowaway.ChainError
	if errors.As(err, &chain) {
		t.Error("decryption failure should stop the chain")
	}
}

func TestCarrier_HidingFailed(t *testing.T) {
	tests := map[string][]byte{
		"no objects": []byte("%PDF-1.4\nthis is not really a pdf\n%%EOF\n"),
		"encrypted": bytes.Replace(stowawaytest.TestPDF(t, nil),
			[]byte("/Root 1 0 R"), []byte("/Root 1 0 R /Encrypt 9 0 R"), 1),
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New().Hide(context.Background(), doc, []byte("x"), envelope(t, ""))
			if !errors.Is(err, stowaway.ErrHidingFailed) || !errors.Is(err, stowaway.ErrMetadataWrite) {
				t.Errorf("Hide() error = %v, want ErrHidingFailed wrapping ErrMetadataWrite", err)
			}
			var chain *stowaway.ChainError
			if !errors.As(err, &chain) || len(chain.Attempts) != 3 {
				t.Errorf("Hide() error = %v, want 3 attempts", err)
			}
		})
	}
}

func TestCarrier_Unsupported(t *testing.T) {
	ctx := context.Background()
	env := envelope(t, "")
	doc := []byte("plain text, no header")

	if _, err := New().Capacity(doc, env); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Capacity() error = %v", err)
	}
	if _, err := New().Hide(ctx, doc, []byte("x"), env); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Hide() error = %v", err)
	}
	if _, err := New().Extract(ctx, doc, env); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Extract() error = %v", err)
	}
}

func TestCarrier_BinaryPayload(t *testing.T) {
	_, err := New().Hide(context.Background(), stowawaytest.TestPDF(t, nil), []byte{0xFF, 0xFE, 0x00}, envelope(t, ""))
	if !errors.Is(err, stowaway.ErrHidingFailed) {
		t.Errorf("Hide() error = %v, want ErrHidingFailed", err)
	}
}

func TestCarrier_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Hide(ctx, stowawaytest.TestPDF(t, nil), []byte("x"), envelope(t, "")); !errors.Is(err, context.Canceled) {
		t.Errorf("Hide() error = %v, want context.Canceled", err)
	}
}
