package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"go.uber.org/mock/gomock"

	"attest/internal/did/codec"
	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	"attest/internal/did/service/mocks"
	"attest/internal/did/store"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"

	"github.com/google/uuid"
)

// fixture bundles the real components a service test needs: in-memory
// store, a live vault, the did:key codec, and a permissive admission mock.
type fixture struct {
	store     *store.InMemoryStore
	registry  *codec.Registry
	vault     *keyvault.AEADVault
	admission *mocks.MockAdmissionController
	tenant    id.TenantID
	ctx       context.Context
}

func newFixture(ctrl *gomock.Controller) *fixture {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	vault, err := keyvault.New(key)
	if err != nil {
		panic(err)
	}
	return &fixture{
		store:     store.NewInMemoryStore(),
		registry:  codec.NewRegistry(codec.NewKeyCodec()),
		vault:     vault,
		admission: mocks.NewMockAdmissionController(ctrl),
		tenant:    id.TenantID(uuid.New()),
		ctx:       context.Background(),
	}
}

// admitAll lets every admission check pass.
func (f *fixture) admitAll() {
	f.admission.EXPECT().
		Admit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&rlmodels.Result{Allowed: true, Limit: 100, Remaining: 99}, nil).
		AnyTimes()
}

func (f *fixture) creation(generator *keygen.Generator) *CreationService {
	svc, err := NewCreationService(f.store, f.registry, generator, f.vault, f.admission)
	if err != nil {
		panic(err)
	}
	return svc
}

func (f *fixture) resolution() *ResolutionService {
	svc, err := NewResolutionService(f.store, f.registry)
	if err != nil {
		panic(err)
	}
	return svc
}

func (f *fixture) signing() *SigningService {
	svc, err := NewSigningService(f.store, f.vault)
	if err != nil {
		panic(err)
	}
	return svc
}

// detStream is a deterministic entropy source: SHA-256 over a counter,
// seeded so two streams with the same seed produce the same keys.
type detStream struct {
	seed    uint64
	counter uint64
	buf     []byte
}

func (d *detStream) Read(p []byte) (int, error) {
	for len(d.buf) < len(p) {
		var block [16]byte
		binary.BigEndian.PutUint64(block[:8], d.seed)
		binary.BigEndian.PutUint64(block[8:], d.counter)
		d.counter++
		sum := sha256.Sum256(block[:])
		d.buf = append(d.buf, sum[:]...)
	}
	n := copy(p, d.buf)
	d.buf = d.buf[n:]
	return n, nil
}
