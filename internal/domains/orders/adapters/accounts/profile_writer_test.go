package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsmemory "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/memory"
	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

func TestProfileWriter_SyncsIntoAccountProfile(t *testing.T) {
	profiles := accountsmemory.NewProfileRepository()
	svc := accountsapp.NewService(accountsmemory.NewRepository(), profiles, accountsmemory.NewSessionStore())
	writer := NewProfileWriter(svc)
	ctx := context.Background()

	err := writer.SyncShippingProfile(ctx, "u1", ports.ShippingProfile{
		FullName: "Ada Lovelace", Phone: "555-0100",
		Street: "12 Analytical Way", City: "London", State: "LDN", ZipCode: "N1 9GU",
	})
	require.NoError(t, err)

	stored, err := profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.FullName)
	assert.Equal(t, "12 Analytical Way, London, LDN N1 9GU", stored.FormattedAddress())
}

func TestProfileWriter_NotConfigured(t *testing.T) {
	var writer *ProfileWriter
	assert.Error(t, writer.SyncShippingProfile(context.Background(), "u1", ports.ShippingProfile{}))
}
