package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswap/barter-api/internal/domain"
)

func TestOptionalIDUnmarshal(t *testing.T) {
	type payload struct {
		ChildPostID OptionalID `json:"child_post_id"`
	}

	t.Run("absent field stays unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

		assert.False(t, p.ChildPostID.Set)
		assert.Nil(t, p.ChildPostID.Value)
	})

	t.Run("explicit null means clear", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"child_post_id": null}`), &p))

		assert.True(t, p.ChildPostID.Set)
		assert.Nil(t, p.ChildPostID.Value)
	})

	t.Run("value is carried through", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"child_post_id": 42}`), &p))

		assert.True(t, p.ChildPostID.Set)
		require.NotNil(t, p.ChildPostID.Value)
		assert.Equal(t, int64(42), *p.ChildPostID.Value)
	})

	t.Run("non-numeric value errors", func(t *testing.T) {
		var p payload
		err := json.Unmarshal([]byte(`{"child_post_id": "abc"}`), &p)

		assert.Error(t, err)
	})
}

func TestQueryInt(t *testing.T) {
	t.Run("returns default when absent", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/offers", nil)
		v, err := queryInt(r, "limit", 20)

		require.NoError(t, err)
		assert.Equal(t, 20, v)
	})

	t.Run("parses a value", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/offers?limit=50", nil)
		v, err := queryInt(r, "limit", 20)

		require.NoError(t, err)
		assert.Equal(t, 50, v)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/offers?limit=abc", nil)
		_, err := queryInt(r, "limit", 20)

		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestQueryID(t *testing.T) {
	t.Run("returns nil when absent", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/offers", nil)
		v, err := queryID(r, "post_id")

		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("parses a positive ID", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/offers?post_id=7", nil)
		v, err := queryID(r, "post_id")

		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, int64(7), *v)
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		for _, raw := range []string{"0", "-3", "abc"} {
			r := httptest.NewRequest("GET", "/offers?post_id="+raw, nil)
			_, err := queryID(r, "post_id")

			assert.ErrorIs(t, err, domain.ErrInvalidID, "raw value %q", raw)
		}
	})
}
