package repository

import (
	"context"
	"testing"

	"github.com/sketchbook/sketchbook/internal/drawing"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seed(t *testing.T, r *MemoryRepo, owner primitive.ObjectID, n int) []primitive.ObjectID {
	t.Helper()
	ids := make([]primitive.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		d := &drawing.Drawing{ID: primitive.NewObjectID(), UserID: owner, Type: drawing.TypeDrawing, Key: "k"}
		require.NoError(t, r.Insert(context.Background(), d))
		ids = append(ids, d.ID)
	}
	return ids
}

func TestMemoryRepo_Cursor(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	alice := primitive.NewObjectID()
	ids := seed(t, r, alice, 3)

	latest, err := r.FindAdjacent(ctx, alice, drawing.Cursor{})
	require.NoError(t, err)
	require.Equal(t, ids[2], latest.ID)

	prev, err := r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.Before, ID: ids[2]})
	require.NoError(t, err)
	require.Equal(t, ids[1], prev.ID)

	next, err := r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.After, ID: ids[0]})
	require.NoError(t, err)
	require.Equal(t, ids[1], next.ID)

	none, err := r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.Before, ID: ids[0]})
	require.NoError(t, err)
	require.Nil(t, none)

	none, err = r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.After, ID: ids[2]})
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestMemoryRepo_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	aliceIDs := seed(t, r, alice, 1)
	bobIDs := seed(t, r, bob, 2)

	// bob's records sit between alice's cursor and "now" but must never leak
	got, err := r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.After, ID: aliceIDs[0]})
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = r.FindAdjacent(ctx, alice, drawing.Cursor{Direction: drawing.Before, ID: bobIDs[1]})
	require.NoError(t, err)
	require.Equal(t, aliceIDs[0], got.ID)

	got, err = r.FindByID(ctx, alice, bobIDs[0])
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = r.FindByID(ctx, bob, bobIDs[0])
	require.NoError(t, err)
	require.Equal(t, bob, got.UserID)
}

func TestMemoryRepo_DuplicateAndCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	owner := primitive.NewObjectID()
	d := &drawing.Drawing{ID: primitive.NewObjectID(), UserID: owner, Type: drawing.TypeDrawing, SignedURL: "http://x"}
	require.NoError(t, r.Insert(ctx, d))
	require.ErrorIs(t, r.Insert(ctx, d), ErrDuplicateID)
	require.Equal(t, 1, r.Len())

	got, err := r.FindByID(ctx, owner, d.ID)
	require.NoError(t, err)
	require.Empty(t, got.SignedURL, "signed URLs are never stored")
	require.False(t, got.CreatedAt.IsZero())

	got.Key = "mutated"
	again, _ := r.FindByID(ctx, owner, d.ID)
	require.NotEqual(t, "mutated", again.Key)
}
