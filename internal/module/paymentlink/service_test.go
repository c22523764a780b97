package paymentlink

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altopay/gateway/internal/module/payment"
)

type fakeLinkRepo struct {
	links map[uuid.UUID]*PaymentLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[uuid.UUID]*PaymentLink)}
}

func (r *fakeLinkRepo) CreateLink(_ context.Context, link *PaymentLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()
	cp := *link
	r.links[link.ID] = &cp
	return nil
}

func (r *fakeLinkRepo) GetLink(_ context.Context, id uuid.UUID) (*PaymentLink, error) {
	l, ok := r.links[id]
	if !ok {
		return nil, ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLinkRepo) GetLinkBySlug(_ context.Context, slug string) (*PaymentLink, error) {
	for _, l := range r.links {
		if l.Slug == slug {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrLinkNotFound
}

func (r *fakeLinkRepo) ListLinks(_ context.Context, merchantID uuid.UUID) ([]*PaymentLink, error) {
	var out []*PaymentLink
	for _, l := range r.links {
		if l.MerchantID == merchantID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) DeactivateLink(_ context.Context, merchantID, id uuid.UUID) (bool, error) {
	l, ok := r.links[id]
	if !ok || l.MerchantID != merchantID || !l.Active {
		return false, nil
	}
	l.Active = false
	return true, nil
}

// fakePaymentService records CreatePayment calls.
type fakePaymentService struct {
	payment.Service
	lastMerchant uuid.UUID
	lastRequest  *payment.CreatePaymentRequest
}

func (s *fakePaymentService) CreatePayment(_ context.Context, merchantID uuid.UUID, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	s.lastMerchant = merchantID
	s.lastRequest = req
	return &payment.CreatePaymentResponse{
		TransactionID: uuid.New(),
		ExternalID:    "or_link",
		Status:        payment.StatusPending,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Provider:      payment.ProviderPagarme,
	}, nil
}

func newLinkFixture() (Service, *fakeLinkRepo, *fakePaymentService) {
	repo := newFakeLinkRepo()
	payments := &fakePaymentService{}
	return NewService(repo, payments, zap.NewNop()), repo, payments
}

func validLinkRequest() *CreateLinkRequest {
	return &CreateLinkRequest{
		Title:          "Monthly plan",
		Description:    "Access for one month",
		Amount:         4990,
		PaymentMethods: []string{"pix", "credit_card"},
	}
}

func payerRequest(method payment.PaymentMethod) *PayLinkRequest {
	return &PayLinkRequest{
		PaymentMethod: method,
		Customer: payment.CustomerInput{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Document: "12345678901",
		},
	}
}

func TestCreateLink(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	t.Run("creates active link with random slug", func(t *testing.T) {
		svc, _, _ := newLinkFixture()

		resp, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Slug)
		assert.True(t, resp.Active)
		assert.Equal(t, int64(4990), resp.Amount)
		assert.Equal(t, []string{"pix", "credit_card"}, resp.PaymentMethods)

		other, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)
		assert.NotEqual(t, resp.Slug, other.Slug)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		req := validLinkRequest()
		req.Amount = 0

		_, err := svc.CreateLink(ctx, merchantID, req)
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
	})

	t.Run("rejects empty method list", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		req := validLinkRequest()
		req.PaymentMethods = nil

		_, err := svc.CreateLink(ctx, merchantID, req)
		assert.ErrorIs(t, err, ErrNoMethods)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		req := validLinkRequest()
		req.PaymentMethods = []string{"pix", "cash"}

		_, err := svc.CreateLink(ctx, merchantID, req)
		assert.ErrorIs(t, err, payment.ErrInvalidPaymentMethod)
	})
}

func TestPayLink(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	t.Run("creates payment with link preset", func(t *testing.T) {
		svc, _, payments := newLinkFixture()
		link, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)

		resp, err := svc.PayLink(ctx, link.Slug, payerRequest(payment.MethodPix))
		require.NoError(t, err)

		assert.Equal(t, int64(4990), resp.Amount)
		assert.Equal(t, merchantID, payments.lastMerchant)
		assert.Equal(t, int64(4990), payments.lastRequest.Amount)
		assert.Equal(t, "Monthly plan", payments.lastRequest.Description)
	})

	t.Run("rejects method the link does not allow", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		link, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)

		_, err = svc.PayLink(ctx, link.Slug, payerRequest(payment.MethodBoleto))
		assert.ErrorIs(t, err, ErrMethodNotAllowed)
	})

	t.Run("unknown slug", func(t *testing.T) {
		svc, _, _ := newLinkFixture()

		_, err := svc.PayLink(ctx, "nope", payerRequest(payment.MethodPix))
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("deactivated link cannot be paid", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		link, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)
		require.NoError(t, svc.DeactivateLink(ctx, merchantID, link.ID))

		_, err = svc.PayLink(ctx, link.Slug, payerRequest(payment.MethodPix))
		assert.ErrorIs(t, err, ErrLinkInactive)
	})

	t.Run("expired link cannot be paid", func(t *testing.T) {
		svc, repo, _ := newLinkFixture()
		past := time.Now().Add(-time.Hour)
		req := validLinkRequest()
		req.ExpiresAt = &past

		link, err := svc.CreateLink(ctx, merchantID, req)
		require.NoError(t, err)
		_, ok := repo.links[link.ID]
		require.True(t, ok)

		_, err = svc.PayLink(ctx, link.Slug, payerRequest(payment.MethodPix))
		assert.ErrorIs(t, err, ErrLinkExpired)
	})
}

func TestDeactivateLink(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	t.Run("only the owner can deactivate", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		link, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)

		err = svc.DeactivateLink(ctx, uuid.New(), link.ID)
		assert.ErrorIs(t, err, ErrLinkNotFound)

		assert.NoError(t, svc.DeactivateLink(ctx, merchantID, link.ID))
	})

	t.Run("deactivated link still visible to owner", func(t *testing.T) {
		svc, _, _ := newLinkFixture()
		link, err := svc.CreateLink(ctx, merchantID, validLinkRequest())
		require.NoError(t, err)
		require.NoError(t, svc.DeactivateLink(ctx, merchantID, link.ID))

		links, err := svc.ListLinks(ctx, merchantID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.False(t, links[0].Active)

		_, err = svc.GetPublicLink(ctx, link.Slug)
		assert.ErrorIs(t, err, ErrLinkInactive)
	})
}
