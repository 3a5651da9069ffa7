package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func okOrder(sheet string) *core.ParsedOrder {
	return &core.ParsedOrder{
		OK:      true,
		Sheet:   &sheet,
		Columns: []string{"LOTE"},
		Rows: []table.Row{
			{Type: table.RowData, Fields: map[string]string{"LOTE": "1"}},
		},
	}
}

func TestMemoryCacheFreshness(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(zap.NewNop(), 60*time.Second, clock.Now)
	key := shift.Key{Turn: 1, BusinessDate: "2025-12-22"}

	c.Put(key, okOrder("22-12"))

	clock.Advance(53 * time.Second)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "22-12", got.SheetName())

	clock.Advance(time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok, "54s is 90% of 60s and must be a miss")
}

func TestMemoryCacheKeyMismatch(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewMemoryCache(zap.NewNop(), time.Minute, clock.Now)

	c.Put(shift.Key{Turn: 1, BusinessDate: "2025-12-22"}, okOrder("22-12"))

	_, ok := c.Get(shift.Key{Turn: 2, BusinessDate: "2025-12-22"})
	assert.False(t, ok)

	stale, ok := c.Stale()
	require.True(t, ok)
	assert.Equal(t, "22-12", stale.SheetName())
}

func TestMemoryCacheIgnoresFailures(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Minute, nil)
	key := shift.Key{Turn: 1, BusinessDate: "2025-12-22"}

	c.Put(key, &core.ParsedOrder{OK: false, Error: "no attachment found"})
	c.Put(key, nil)

	_, ok := c.Stale()
	assert.False(t, ok)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Minute, nil)
	key := shift.Key{Turn: 1, BusinessDate: "2025-12-22"}
	order := okOrder("22-12")
	c.Put(key, order)

	order.Rows[0].Fields["LOTE"] = "changed"
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "1", got.Rows[0].Fields["LOTE"])

	got.Rows[0].Fields["LOTE"] = "changed"
	*got.Sheet = "other"
	stale, _ := c.Stale()
	assert.Equal(t, "1", stale.Rows[0].Fields["LOTE"])
	assert.Equal(t, "22-12", stale.SheetName())
}
