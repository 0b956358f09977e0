package lint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	registrationIdentifierRequiredMessageConstant = "linter registration requires an identifier"
	registrationFactoryRequiredTemplateConstant   = "linter %s registration requires a factory"
	registrationDuplicateTemplateConstant         = "linter %s: %w"
	registrationFrozenTemplateConstant            = "linter %s: %w"
	reservedIdentifierPrefixConstant              = "_"
	registrationReservedTemplateConstant          = "linter identifier %s is reserved"
)

var (
	// ErrRegistryFrozen reports a registration attempted after a run started.
	ErrRegistryFrozen = errors.New("linter registry is frozen")
	// ErrDuplicateRegistration reports a second registration under an existing identifier.
	ErrDuplicateRegistration = errors.New("linter already registered")
)

// Kind distinguishes per-asset linters from corpus linters in listings.
type Kind string

// Linter kinds.
const (
	KindAsset  Kind = "asset"
	KindCorpus Kind = "corpus"
)

// Factory instantiates a linter from its declarative options.
type Factory func(options Options) (Linter, error)

// Registration describes one linter available to the engine.
type Registration struct {
	Identifier  string
	Kind        Kind
	Description string
	Factory     Factory
}

// Registry maps linter identifiers to factories. It becomes read-only once frozen.
type Registry struct {
	mutex         sync.RWMutex
	registrations map[string]Registration
	frozen        bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{registrations: make(map[string]Registration)}
}

// Register adds a linter factory under its identifier.
func (registry *Registry) Register(registration Registration) error {
	identifier := strings.TrimSpace(registration.Identifier)
	if len(identifier) == 0 {
		return errors.New(registrationIdentifierRequiredMessageConstant)
	}
	if strings.HasPrefix(identifier, reservedIdentifierPrefixConstant) {
		return fmt.Errorf(registrationReservedTemplateConstant, identifier)
	}
	if registration.Factory == nil {
		return fmt.Errorf(registrationFactoryRequiredTemplateConstant, identifier)
	}

	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	if registry.frozen {
		return fmt.Errorf(registrationFrozenTemplateConstant, identifier, ErrRegistryFrozen)
	}
	if _, exists := registry.registrations[identifier]; exists {
		return fmt.Errorf(registrationDuplicateTemplateConstant, identifier, ErrDuplicateRegistration)
	}

	registration.Identifier = identifier
	registry.registrations[identifier] = registration
	return nil
}

// Lookup returns the registration for an identifier.
func (registry *Registry) Lookup(identifier string) (Registration, bool) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	registration, exists := registry.registrations[strings.TrimSpace(identifier)]
	return registration, exists
}

// Registrations lists every registration sorted by identifier.
func (registry *Registry) Registrations() []Registration {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	registrations := make([]Registration, 0, len(registry.registrations))
	for _, registration := range registry.registrations {
		registrations = append(registrations, registration)
	}
	sort.Slice(registrations, func(leftIndex int, rightIndex int) bool {
		return registrations[leftIndex].Identifier < registrations[rightIndex].Identifier
	})
	return registrations
}

// Identifiers lists registered identifiers sorted alphabetically.
func (registry *Registry) Identifiers() []string {
	registrations := registry.Registrations()
	identifiers := make([]string, 0, len(registrations))
	for _, registration := range registrations {
		identifiers = append(identifiers, registration.Identifier)
	}
	return identifiers
}

// Freeze makes the registry read-only.
func (registry *Registry) Freeze() {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.frozen = true
}

// Frozen reports whether the registry rejects new registrations.
func (registry *Registry) Frozen() bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	return registry.frozen
}
