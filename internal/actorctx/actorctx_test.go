package actorctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorRoundTrip(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)

	ctx := With(context.Background(), Actor{UserID: "1", Role: "driver"})
	id, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	_, ok = From(With(context.Background(), Actor{}))
	assert.False(t, ok, "blank actor does not count")
}
