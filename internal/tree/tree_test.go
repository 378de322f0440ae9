package tree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vampire-js/DAAVAT/internal/models"
)

func doc(id uuid.UUID, name string, parent *uuid.UUID, order int64) models.Document {
	return models.Document{ID: id, Name: name, Kind: models.KindFolder, ParentID: parent, Order: order}
}

func TestBuildNestsChildrenUnderParents(t *testing.T) {
	rootID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	roots := Build([]models.Document{
		doc(rootID, "root", nil, 1),
		doc(childID, "child", &rootID, 2),
		doc(grandchildID, "grandchild", &childID, 3),
	})

	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "child", roots[0].Children[0].Name)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "grandchild", roots[0].Children[0].Children[0].Name)
}

func TestBuildSortsSiblingsByOrderThenName(t *testing.T) {
	roots := Build([]models.Document{
		doc(uuid.New(), "b", nil, 20),
		doc(uuid.New(), "a", nil, 20),
		doc(uuid.New(), "z", nil, 10),
	})

	require.Len(t, roots, 3)
	assert.Equal(t, "z", roots[0].Name, "lowest order first")
	assert.Equal(t, "a", roots[1].Name, "name breaks order ties")
	assert.Equal(t, "b", roots[2].Name)
}

func TestBuildSurfacesOrphansAtRoot(t *testing.T) {
	missingParent := uuid.New()
	orphanID := uuid.New()

	roots := Build([]models.Document{
		doc(uuid.New(), "root", nil, 1),
		doc(orphanID, "orphan", &missingParent, 2),
	})

	require.Len(t, roots, 2, "orphaned documents must not disappear")
	assert.Equal(t, "root", roots[0].Name)
	assert.Equal(t, "orphan", roots[1].Name)
}

func TestBuildEmptyInput(t *testing.T) {
	roots := Build(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}
