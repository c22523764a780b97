package payment

import (
	"fmt"
	"sync"

	"github.com/altopay/gateway/internal/module/payment/provider"
)

// ProviderRegistry manages the configured payment providers and routes
// payment methods to them.
type ProviderRegistry struct {
	mu              sync.RWMutex
	providers       map[Provider]provider.Provider
	defaultCardProv Provider
}

// NewProviderRegistry creates a new provider registry.
// defaultCardProvider selects who charges credit cards; pix and boleto
// always route to Pagar.me, debit cards always to Stripe.
func NewProviderRegistry(defaultCardProvider Provider) *ProviderRegistry {
	if defaultCardProvider == "" {
		defaultCardProvider = ProviderPagarme
	}
	return &ProviderRegistry{
		providers:       make(map[Provider]provider.Provider),
		defaultCardProv: defaultCardProvider,
	}
}

// Register registers a provider.
func (r *ProviderRegistry) Register(name Provider, p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get returns a provider by name.
func (r *ProviderRegistry) Get(name Provider) (provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// RouteMethod returns the provider responsible for a payment method.
func (r *ProviderRegistry) RouteMethod(method PaymentMethod) (Provider, provider.Provider, error) {
	var name Provider
	switch method {
	case MethodPix, MethodBoleto:
		name = ProviderPagarme
	case MethodDebitCard:
		name = ProviderStripe
	case MethodCreditCard:
		name = r.defaultCardProv
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, method)
	}

	p, err := r.Get(name)
	if err != nil {
		return "", nil, err
	}
	return name, p, nil
}

// List returns all registered provider names.
func (r *ProviderRegistry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Provider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
