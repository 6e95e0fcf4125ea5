package vts

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestSignerConcurrent blasts a single Signer from many goroutines and checks
// that every proof verifies on its own.
func TestSignerConcurrent(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	signer := NewSigner(kp, nil)
	pub := signer.PublicKey()

	const workers = 16
	const perWorker = 20
	results := make(chan SignedTimestamp, workers*perWorker)
	errs := make(chan error, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				st, err := signer.Sign([]byte(fmt.Sprintf("worker %d message %d", w, i)))
				if err != nil {
					errs <- err
					continue
				}
				results <- st
			}
		}(w)
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	count := 0
	for st := range results {
		if !st.Verify(pub) {
			t.Fatalf("proof for %q did not verify", st.Message)
		}
		count++
	}
	if count != workers*perWorker {
		t.Fatalf("expected %d proofs, got %d", workers*perWorker, count)
	}
}

// TestSignerVerificationKey checks that the key report uses a clock reading
// taken at call time.
func TestSignerVerificationKey(t *testing.T) {
	kp := MustKeyPair(testPrivKeyA)
	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	})
	signer := NewSigner(kp, clock)

	vk1 := signer.VerificationKey()
	vk2 := signer.VerificationKey()
	if vk1.PublicKey != kp.PublicKey() || vk2.PublicKey != kp.PublicKey() {
		t.Fatal("verification key does not match the key pair")
	}
	if vk1.IssuedAt != "2025-01-01T00:00:01.000000Z" || vk2.IssuedAt != "2025-01-01T00:00:02.000000Z" {
		t.Fatalf("unexpected issue times %q and %q", vk1.IssuedAt, vk2.IssuedAt)
	}

	// Signing reads the clock exactly once.
	st, err := signer.Sign([]byte("once"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Timestamp != "2025-01-01T00:00:03.000000Z" {
		t.Fatalf("signer read the clock more than once: %q", st.Timestamp)
	}
	if !st.Verify(kp.PublicKey()) {
		t.Fatal("proof did not verify")
	}
}

// TestSignerCopiesMessage checks that the proof does not alias the caller's
// buffer.
func TestSignerCopiesMessage(t *testing.T) {
	signer := NewSigner(MustKeyPair(testPrivKeyA), nil)
	msg := []byte("mutable")
	st, err := signer.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}
	msg[0] = 'M'
	if string(st.Message) != "mutable" {
		t.Fatal("proof aliases the caller's message")
	}
	if !st.Verify(signer.PublicKey()) {
		t.Fatal("proof did not verify")
	}
}
