package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func TestConcurrentAddToCartPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop"),
		tcpostgres.WithUsername("shop"),
		tcpostgres.WithPassword("shop"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, repo.AutoMigrate(gdb))

	r := repo.New(gdb)
	u, _ := testdb.User(t, gdb)
	it := testdb.Item(t, gdb, "Boot", "9.99", nil)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			<-start
			cart, err := r.GetOrCreateCart(ctx, u.ID)
			if err != nil {
				errs <- err
				return
			}
			_, err = r.AddToCart(ctx, cart.ID, it.ID, qty)
			errs <- err
		}(i%3 + 1)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	want := 0
	for i := 0; i < workers; i++ {
		want += i%3 + 1
	}

	var lines []models.CartItem
	require.NoError(t, gdb.Where("item_id = ?", it.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, want, lines[0].Quantity)

	// a user without a cart racing on first use still ends up with one cart
	fresh := models.User{Username: "fresh", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&fresh).Error)
	var cwg sync.WaitGroup
	ids := make(chan uint, workers)
	for i := 0; i < workers; i++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			c, err := r.GetOrCreateCart(ctx, fresh.ID)
			if assert.NoError(t, err) {
				ids <- c.ID
			}
		}()
	}
	cwg.Wait()
	close(ids)
	seen := map[uint]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1)

	var carts int64
	require.NoError(t, gdb.Model(&models.Cart{}).Where("user_id = ?", fresh.ID).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}
