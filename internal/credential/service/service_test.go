package service

import (
	"context"
	"crypto/rand"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"attest/internal/credential/service/mocks"
	"attest/internal/credential/store"
	"attest/internal/did/codec"
	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	didmodels "attest/internal/did/models"
	didservice "attest/internal/did/service"
	didstore "attest/internal/did/store"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
)

// credFixture wires the real DID stack behind the credential services: DIDs
// are created for real, tokens are signed with real keys, and verification
// runs against the stored public keys. Only admission is mocked.
type credFixture struct {
	dids        *didstore.InMemoryStore
	credentials *store.InMemoryStore
	creation    *didservice.CreationService
	resolution  *didservice.ResolutionService
	signing     *didservice.SigningService
	admission   *mocks.MockAdmissionController
	tenant      id.TenantID
	ctx         context.Context
}

func newCredFixture(ctrl *gomock.Controller) *credFixture {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	vault, err := keyvault.New(key)
	if err != nil {
		panic(err)
	}

	dids := didstore.NewInMemoryStore()
	registry := codec.NewRegistry(codec.NewKeyCodec())
	admission := mocks.NewMockAdmissionController(ctrl)

	creation, err := didservice.NewCreationService(dids, registry, keygen.New(), vault, admission)
	if err != nil {
		panic(err)
	}
	resolution, err := didservice.NewResolutionService(dids, registry)
	if err != nil {
		panic(err)
	}
	signing, err := didservice.NewSigningService(dids, vault)
	if err != nil {
		panic(err)
	}

	return &credFixture{
		dids:        dids,
		credentials: store.NewInMemoryStore(),
		creation:    creation,
		resolution:  resolution,
		signing:     signing,
		admission:   admission,
		tenant:      id.TenantID(uuid.New()),
		ctx:         context.Background(),
	}
}

// admitAll lets every admission check pass.
func (f *credFixture) admitAll() {
	f.admission.EXPECT().
		Admit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&rlmodels.Result{Allowed: true, Limit: 100, Remaining: 99}, nil).
		AnyTimes()
}

func (f *credFixture) issuance(opts ...IssuanceOption) *IssuanceService {
	svc, err := NewIssuanceService(f.credentials, f.resolution, f.signing, f.admission, opts...)
	if err != nil {
		panic(err)
	}
	return svc
}

func (f *credFixture) verification(opts ...VerificationOption) *VerificationService {
	svc, err := NewVerificationService(f.credentials, f.dids, f.admission, opts...)
	if err != nil {
		panic(err)
	}
	return svc
}

// newDid provisions a real DID under the given tenant.
func (f *credFixture) newDid(tenant id.TenantID) didmodels.Summary {
	created, err := f.creation.CreateDid(f.ctx, tenant, didmodels.MethodKey)
	if err != nil {
		panic(err)
	}
	return created.Summary()
}
