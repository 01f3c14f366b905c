package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbrandz/tbz/internal/client/localstore"
)

func TestCountry(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	p := New(store)

	c, err := p.Country(ctx)
	require.NoError(t, err)
	assert.Empty(t, c)

	require.NoError(t, p.SetCountry(ctx, "GH"))
	c, err = p.Country(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GH", c)

	raw, err := store.Get(ctx, CountryKey)
	require.NoError(t, err)
	assert.Equal(t, `"GH"`, string(raw))

	require.NoError(t, p.SetCountry(ctx, ""))
	c, err = p.Country(ctx)
	require.NoError(t, err)
	assert.Empty(t, c)
}
