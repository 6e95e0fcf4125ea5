package vts

// SignedTimestamp is the proof returned for a message. Timestamp is the exact
// string that went into the signed payload.
type SignedTimestamp struct {
	Message   []byte
	Timestamp string
	Signature Signature
}

// Verify checks the proof against a public key.
func (st SignedTimestamp) Verify(publicKey PublicKey) bool {
	return VerifyTimestamp(st.Message, st.Timestamp, st.Signature[:], publicKey[:])
}

// VerificationKey is the public half of the service key together with the
// instant it was handed out.
type VerificationKey struct {
	PublicKey PublicKey
	IssuedAt  string
}

// Signer is the server side signing service. It holds the key pair and the
// clock by value and never mutates either, so one Signer is safe for any
// number of concurrent callers.
type Signer struct {
	staticKeys  KeyPair
	staticClock TimestampSource
}

// NewSigner returns a Signer for the provided keys. A nil clock means the
// system clock.
func NewSigner(kp KeyPair, clock TimestampSource) *Signer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Signer{
		staticKeys:  kp,
		staticClock: clock,
	}
}

// Sign timestamps and signs a message.
func (s *Signer) Sign(message []byte) (SignedTimestamp, error) {
	timestamp, sig, err := SignTimestamped(message, s.staticClock, s.staticKeys)
	if err != nil {
		return SignedTimestamp{}, err
	}
	msg := make([]byte, len(message))
	copy(msg, message)
	return SignedTimestamp{
		Message:   msg,
		Timestamp: timestamp,
		Signature: sig,
	}, nil
}

// VerificationKey returns the public key along with a clock reading taken at
// the moment of the call.
func (s *Signer) VerificationKey() VerificationKey {
	return VerificationKey{
		PublicKey: s.staticKeys.PublicKey(),
		IssuedAt:  s.staticClock.Now(),
	}
}

// PublicKey returns the public key used by the signer.
func (s *Signer) PublicKey() PublicKey {
	return s.staticKeys.PublicKey()
}
