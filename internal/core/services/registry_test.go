package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

func TestRegistry_Capabilities(t *testing.T) {
	r := NewRegistry(&mockBuilder{})

	caps := r.Capabilities()
	require.Len(t, caps, len(domain.AllDomains()))
	for _, c := range caps {
		assert.True(t, domain.IsValidDomain(c.Domain))
		assert.NotEmpty(t, c.DisplayName)
		assert.NotEmpty(t, c.Description)
	}
}

func TestRegistry_IndexBeforeFirstLoad(t *testing.T) {
	r := NewRegistry(&mockBuilder{})

	_, ok := r.Index(domain.DomainMarket)
	assert.False(t, ok, "no index before the first successful reload")
	assert.Zero(t, r.Generation(domain.DomainMarket))
	assert.Zero(t, r.RecordCount(domain.DomainMarket))
}

func TestRegistry_ReloadSwapsSnapshot(t *testing.T) {
	r := NewRegistry(&mockBuilder{})
	records := []domain.KnowledgeRecord{{ID: "r1", Domain: domain.DomainMarket, Title: "Pricing"}}

	require.NoError(t, r.Reload(domain.DomainMarket, records))

	idx, ok := r.Index(domain.DomainMarket)
	require.True(t, ok)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, uint64(1), r.Generation(domain.DomainMarket))

	require.NoError(t, r.Reload(domain.DomainMarket, records))
	assert.Equal(t, uint64(2), r.Generation(domain.DomainMarket))
}

func TestRegistry_ReloadFailureKeepsPriorSnapshot(t *testing.T) {
	builder := &mockBuilder{}
	r := NewRegistry(builder)
	records := []domain.KnowledgeRecord{{ID: "r1", Domain: domain.DomainMarket, Title: "Pricing"}}

	require.NoError(t, r.Reload(domain.DomainMarket, records))

	builder.buildErr = errors.New("corrupt snapshot")
	err := r.Reload(domain.DomainMarket, nil)
	require.Error(t, err)

	// The previous snapshot keeps serving.
	idx, ok := r.Index(domain.DomainMarket)
	require.True(t, ok)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, uint64(1), r.Generation(domain.DomainMarket))
}

func TestRegistry_ConcurrentReloadsPublishEveryGeneration(t *testing.T) {
	r := NewRegistry(&mockBuilder{})
	records := []domain.KnowledgeRecord{{ID: "r1", Domain: domain.DomainMarket, Title: "Pricing"}}

	const reloads = 32
	var wg sync.WaitGroup
	for i := 0; i < reloads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Reload(domain.DomainMarket, records))
		}()
	}
	wg.Wait()

	// Each publish replaces the snapshot it observed, so no reload can
	// leave an older snapshot current.
	assert.Equal(t, uint64(reloads), r.Generation(domain.DomainMarket))
}

func TestRegistry_ReloadUnknownDomain(t *testing.T) {
	r := NewRegistry(&mockBuilder{})

	err := r.Reload("astrology", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestRegistry_VersionStampChangesOnReload(t *testing.T) {
	r := NewRegistry(&mockBuilder{})
	domains := []domain.DomainID{domain.DomainMarket, domain.DomainFinancial}

	before := r.VersionStamp(domains)
	require.NoError(t, r.Reload(domain.DomainMarket, nil))
	after := r.VersionStamp(domains)

	assert.NotEqual(t, before, after)

	// Stamp is order-independent over the input domain set.
	reversed := r.VersionStamp([]domain.DomainID{domain.DomainFinancial, domain.DomainMarket})
	assert.Equal(t, after, reversed)
}
