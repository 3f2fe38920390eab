package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/clearmeat/assessment/internal/models"
	"github.com/stretchr/testify/assert"
)

func testEntry(productID string) *Entry {
	return &Entry{
		Payload:    models.AssessmentResult{ProductID: productID, Grade: "B"},
		CapturedAt: time.Now().UTC(),
	}
}

func TestMemoryTier_SetAndGet(t *testing.T) {
	tier := NewMemoryTier(8)

	tier.Set("key", testEntry("123"))

	entry := tier.Get("key")
	assert.NotNil(t, entry)
	assert.Equal(t, "123", entry.Payload.ProductID)
}

func TestMemoryTier_Get_NotResident(t *testing.T) {
	tier := NewMemoryTier(8)

	assert.Nil(t, tier.Get("missing"))
}

func TestMemoryTier_Set_Overwrite(t *testing.T) {
	tier := NewMemoryTier(8)

	tier.Set("key", testEntry("first"))
	tier.Set("key", testEntry("second"))

	entry := tier.Get("key")
	assert.NotNil(t, entry)
	assert.Equal(t, "second", entry.Payload.ProductID)
	assert.Equal(t, 1, tier.Size())
}

func TestMemoryTier_Delete(t *testing.T) {
	tier := NewMemoryTier(8)

	tier.Set("key", testEntry("123"))
	tier.Delete("key")

	assert.Nil(t, tier.Get("key"))
}

func TestMemoryTier_Flush(t *testing.T) {
	tier := NewMemoryTier(8)

	tier.Set("a", testEntry("1"))
	tier.Set("b", testEntry("2"))
	tier.Flush()

	assert.Equal(t, 0, tier.Size())
	assert.Nil(t, tier.Get("a"))
	assert.Nil(t, tier.Get("b"))
}

func TestMemoryTier_BoundedEviction(t *testing.T) {
	tier := NewMemoryTier(4)

	for i := 0; i < 10; i++ {
		tier.Set(fmt.Sprintf("key-%d", i), testEntry(fmt.Sprintf("%d", i)))
	}

	// The accelerator never grows past its bound; which entries survive is
	// unspecified
	assert.Equal(t, 4, tier.Size())
}
